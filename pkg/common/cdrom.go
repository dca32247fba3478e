// Package common provides common utilities for CD-ROM operations.
// This file contains MSF conversion and bit formatting helpers.
package common

import "fmt"

// Sectors read per second at single speed.
const SectorsPerSecond1x = 75

// LBAToMSF converts LBA (Logical Block Address) to MSF (Minutes:Seconds:Frames) format
// LBA to MSF conversion: LBA + 150 (pregap)
func LBAToMSF(lba uint32) string {
	totalFrames := lba + 150

	minutes := totalFrames / (60 * SectorsPerSecond1x)
	seconds := (totalFrames % (60 * SectorsPerSecond1x)) / SectorsPerSecond1x
	frames := totalFrames % SectorsPerSecond1x

	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, frames)
}

// SectorToMSF formats a sector index as MSF. Negative indexes render as "--:--:--".
func SectorToMSF(sector int) string {
	lba, err := SafeIntToUint32(sector)
	if err != nil {
		return "--:--:--"
	}
	return LBAToMSF(lba)
}

// BitsToString renders the low count bits of value MSB first as '0' and '1'.
func BitsToString(value uint64, count int) string {
	if count <= 0 {
		return ""
	}
	buf := make([]byte, count)
	for i := 0; i < count; i++ {
		if value&(1<<uint(count-1-i)) != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}
