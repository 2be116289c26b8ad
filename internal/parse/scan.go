package parse

import (
	"errors"
	"strings"
)

// UnknownSymbology is reported when a scanner does not say what it read.
const UnknownSymbology = "Unknown"

// ErrEmptyScan is returned when no payload key carries any data.
var ErrEmptyScan = errors.New("no barcode data received")

// scanKeys lists the (data, symbology) extras the supported handheld scanners
// broadcast, in lookup order: Zebra DataWedge, Honeywell, Datalogic, generic.
var scanKeys = [][2]string{
	{"com.symbol.datawedge.data_string", "com.symbol.datawedge.label_type"},
	{"data", "codeId"},
	{"SCAN_BARCODE1", "SCAN_BARCODE_TYPE"},
	{"barcodeData", ""},
}

// Scan is a decoded barcode read.
type Scan struct {
	Data      string
	Symbology string
}

// ParseScan picks the barcode out of a scanner broadcast payload.
func ParseScan(extras map[string]string) (Scan, error) {
	for _, k := range scanKeys {
		data := strings.TrimSpace(extras[k[0]])
		if data == "" {
			continue
		}
		sym := UnknownSymbology
		if k[1] != "" && strings.TrimSpace(extras[k[1]]) != "" {
			sym = strings.TrimSpace(extras[k[1]])
		}
		return Scan{Data: data, Symbology: sym}, nil
	}
	return Scan{}, ErrEmptyScan
}
