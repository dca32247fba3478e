// Package psx provides PlayStation-specific CD-ROM reading functionality.
package psx

import (
	"fmt"
	"io"
	"os"

	"github.com/hansbonini/psxstr/pkg/common"
)

// CDReader provides random access to the sectors of a disc image file
type CDReader struct {
	source       io.ReaderAt
	closer       io.Closer
	totalSectors int
	sectorSize   int
	tracks       []Track // Sorted by start sector; empty when no cue sheet was given
}

// NewCDReader opens a disc image and detects its sector size from the file size
func NewCDReader(filename string) (*CDReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", common.ErrFailedToOpenImage, err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", common.ErrFailedToOpenImage, err)
	}

	r, err := NewCDReaderFrom(file, fileInfo.Size(), DetectSectorSize(fileInfo.Size()))
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file
	return r, nil
}

// NewCDReaderFrom reads sectors of sectorSize bytes from source. A trailing
// partial sector is ignored.
func NewCDReaderFrom(source io.ReaderAt, size int64, sectorSize int) (*CDReader, error) {
	switch sectorSize {
	case CD_SECTOR_SIZE, CD_XA_DATA_SIZE, CD_DATA_SIZE:
	default:
		return nil, fmt.Errorf("%s %d", common.ErrUnrecognizedSectorSize, sectorSize)
	}
	total, err := common.SafeInt64ToInt(size / int64(sectorSize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", common.ErrFailedToOpenImage, err)
	}
	return &CDReader{
		source:       source,
		totalSectors: total,
		sectorSize:   sectorSize,
	}, nil
}

// DetectSectorSize guesses the sector size of an image from its byte size.
// Raw 2352-byte images are preferred when the size is ambiguous.
func DetectSectorSize(size int64) int {
	switch {
	case size%CD_SECTOR_SIZE == 0:
		return CD_SECTOR_SIZE
	case size%CD_XA_DATA_SIZE == 0:
		return CD_XA_DATA_SIZE
	case size%CD_DATA_SIZE == 0:
		return CD_DATA_SIZE
	default:
		return CD_SECTOR_SIZE
	}
}

// Close releases the underlying file, if the reader opened one
func (r *CDReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Sectors returns the number of whole sectors in the image
func (r *CDReader) Sectors() int {
	return r.totalSectors
}

// SectorSize returns the size in bytes of each sector in the image
func (r *CDReader) SectorSize() int {
	return r.sectorSize
}

// ReadSector reads and parses sector lba. Each call returns a sector backed
// by its own buffer so callers may hold on to previous sectors.
func (r *CDReader) ReadSector(lba int) (*Sector, error) {
	if lba >= r.totalSectors || lba < 0 {
		return nil, fmt.Errorf("%s: LBA %d (total: %d)", common.ErrSectorIndexOutOfBounds, lba, r.totalSectors)
	}

	buffer := make([]byte, r.sectorSize)
	offset := int64(lba) * int64(r.sectorSize)
	n, err := r.source.ReadAt(buffer, offset)
	if n < len(buffer) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%s %d: %w", common.ErrFailedToReadSector, lba, err)
	}

	if r.isAudio(lba) {
		return ParseCDAudio(buffer, lba), nil
	}
	return Parse(buffer, lba), nil
}
