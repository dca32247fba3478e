// Package pkg provides the disc scanning pipeline for PlayStation CD images.
// This file renders the scan report as a PDF document.
package pkg

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/hansbonini/psxstr/pkg/common"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageName = "image-sha256"

// SavePDF renders the report into a PDF file. The first page carries a QR
// code of the image hash when one is set.
func (r *ScanReport) SavePDF(path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("psxstr scan report", false)
	pdf.SetAuthor("psxstr", false)
	pdf.SetCreator("psxstr", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Scan Report")
	pdf.Ln(12)

	if err := r.addHashQR(pdf); err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToWriteReport, err)
	}
	r.addSummarySection(pdf)
	r.addXASection(pdf)
	r.addVideoSection(pdf)
	r.addFailuresSection(pdf)

	if pdf.Err() {
		return fmt.Errorf("%s: %w", common.ErrFailedToWriteReport, pdf.Error())
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("%s: %w", common.ErrFailedToCreateReport, err)
	}
	common.LogInfo(common.InfoReportWritten, path)
	return nil
}

// ImageHashToQR encodes a hex hash as a QR code PNG.
func ImageHashToQR(hash string, size int) ([]byte, error) {
	normalized := strings.ToUpper(strings.TrimSpace(hash))
	if normalized == "" {
		return nil, fmt.Errorf("%w: image hash is empty", common.ErrInvalidArgument)
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode(normalized, qrcode.Medium, size)
}

func (r *ScanReport) addHashQR(pdf *gofpdf.Fpdf) error {
	if r.SHA256 == "" {
		return nil
	}
	png, err := ImageHashToQR(r.SHA256, 256)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(png))
	pageWidth, _ := pdf.GetPageSize()
	_, _, right, _ := pdf.GetMargins()
	pdf.ImageOptions(qrImageName, pageWidth-right-30, 15, 30, 30, false, opts, 0, "")
	return nil
}

func (r *ScanReport) addSummarySection(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{"Image", emptyFallback(r.Image, "-")},
		{"Sector size", strconv.Itoa(r.SectorSize)},
		{"Sectors", strconv.Itoa(r.Sectors)},
		{"XA sectors", strconv.Itoa(r.Counts.XA)},
		{"Video sectors", strconv.Itoa(r.Counts.Video)},
		{"CD audio sectors", strconv.Itoa(r.Counts.CDAudio)},
		{"Other sectors", strconv.Itoa(r.Counts.Other)},
		{"Invalid sectors", strconv.Itoa(r.Counts.Invalid)},
	}
	for _, item := range items {
		pdf.CellFormat(40, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	if r.SHA256 != "" {
		pdf.SetFont("Courier", "", 8)
		pdf.MultiCell(0, 4, "SHA-256 "+r.SHA256, "", "L", false)
	}
	pdf.Ln(4)
}

func (r *ScanReport) addXASection(pdf *gofpdf.Fpdf) {
	headers := []string{"Channel", "Sectors", "Count", "Rate", "Bits", "Channels", "Speed", "Errors", "Silent"}
	widths := []float64{18, 30, 16, 18, 14, 22, 16, 18, 18}
	rows := make([][]string, 0, len(r.XAStreams))
	for _, s := range r.XAStreams {
		channels := "mono"
		if s.Stereo {
			channels = "stereo"
		}
		speed := "-"
		if s.DiscSpeed > 0 {
			speed = fmt.Sprintf("%dx", s.DiscSpeed)
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Channel),
			fmt.Sprintf("%d-%d", s.StartSector, s.EndSector),
			strconv.Itoa(s.SectorCount),
			strconv.Itoa(s.SamplesPerSecond),
			strconv.Itoa(s.BitsPerSample),
			channels,
			speed,
			strconv.Itoa(s.Errors),
			strconv.Itoa(s.SilentSectors),
		})
	}
	addTableSection(pdf, "XA Audio Streams", headers, widths, rows)
}

func (r *ScanReport) addVideoSection(pdf *gofpdf.Fpdf) {
	headers := []string{"Channel", "Sectors", "Frames", "Size", "Complete", "Bad headers", "Sectors/frame"}
	widths := []float64{18, 30, 24, 22, 22, 24, 30}
	rows := make([][]string, 0, len(r.VideoStreams))
	for _, s := range r.VideoStreams {
		spf := "-"
		if len(s.SectorsPerFrame) > 0 {
			parts := make([]string, len(s.SectorsPerFrame))
			for i, v := range s.SectorsPerFrame {
				parts[i] = strconv.Itoa(v)
			}
			spf = strings.Join(parts, ", ")
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Channel),
			fmt.Sprintf("%d-%d", s.StartSector, s.EndSector),
			fmt.Sprintf("%d-%d", s.FirstFrame, s.LastFrame),
			fmt.Sprintf("%dx%d", s.Width, s.Height),
			strconv.Itoa(s.Frames),
			strconv.Itoa(s.HeaderErrors),
			spf,
		})
	}
	addTableSection(pdf, "Video Streams", headers, widths, rows)
}

func (r *ScanReport) addFailuresSection(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Failures")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 10)
	if len(r.Failures) == 0 {
		pdf.MultiCell(0, 6, "No failures recorded.", "", "L", false)
		return
	}
	for i, f := range r.Failures {
		pdf.MultiCell(0, 5, fmt.Sprintf("%d. %s", i+1, f), "", "L", false)
	}
}

func addTableSection(pdf *gofpdf.Fpdf, title string, headers []string, widths []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "None found.", "", "L", false)
		pdf.Ln(4)
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		renderTableRow(pdf, widths, row, 5)
	}
	pdf.Ln(4)
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		lines := pdf.SplitText(emptyFallback(val, "-"), widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		pdf.MultiCell(widths[i], lineHeight, strings.Join(lines, "\n"), "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+float64(maxLines)*lineHeight)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
