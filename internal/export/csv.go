package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pallet-cubing-backend/internal/model"
	"pallet-cubing-backend/internal/validate"
)

// Header is the fixed column order of a cubing export.
var Header = []string{
	"Timestamp",
	"Terminal",
	"Receiver",
	"Trailer Number",
	"PRO Number Incoming",
	"PRO Prefix",
	"PRO Number Erb",
	"Expected Pallets for PRO",
	"Pallet Number",
	"Freight Type",
	"Temp1",
	"Temp2",
	"Pallet Height",
	"Condition",
	"OS&D Reason",
	"OS&D Quantity",
	"OS&D Quantity Type",
	"Status",
}

const notApplicable = "N/A"

// FileName is the export file name for a trailer.
func FileName(trailer string) string {
	return fmt.Sprintf("CubingData_%s.csv", trailer)
}

// Render writes the header and one row per record, in the order given.
func Render(w io.Writer, records []model.PalletRecord) error {
	if _, err := io.WriteString(w, strings.Join(Header, ",")+"\n"); err != nil {
		return err
	}
	for i := range records {
		if _, err := io.WriteString(w, strings.Join(Row(&records[i]), ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Row renders the escaped fields of one record.
func Row(r *model.PalletRecord) []string {
	return []string{
		escape(r.Timestamp),
		escape(r.Terminal),
		escape(r.Receiver),
		escape(r.TrailerNumber),
		escape(r.ProNumberIncoming),
		escape(r.ProPrefix),
		escape(r.ProNumberErb),
		strconv.Itoa(r.ExpectedPallets),
		strconv.Itoa(r.PalletSequence),
		escape(r.FreightType),
		temperature(&r.Temp1),
		temperature(r.Temp2),
		strconv.Itoa(r.PalletHeight),
		escape(r.Condition),
		nullable(r.OsdReason),
		nullableInt(r.OsdQuantity),
		nullable(r.OsdQuantityType),
		escape(r.Status),
	}
}

// escape quotes a field only when it holds a comma, a quote or a newline.
func escape(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

func temperature(t *string) string {
	if t == nil {
		return notApplicable
	}
	v := validate.FormatTemperatureForExport(*t)
	if v == "" {
		return notApplicable
	}
	return escape(v)
}

func nullable(v *string) string {
	if v == nil {
		return notApplicable
	}
	return escape(*v)
}

func nullableInt(v *int) string {
	if v == nil {
		return notApplicable
	}
	return strconv.Itoa(*v)
}

// WriteFile renders records into dir/CubingData_<trailer>.csv, replacing any
// previous export of the trailer, and returns the file path.
func WriteFile(dir, trailer string, records []model.PalletRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir %s: %w", dir, err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, records); err != nil {
		return "", fmt.Errorf("failed to render export for trailer %s: %w", trailer, err)
	}

	path := filepath.Join(dir, FileName(trailer))
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}
	return path, nil
}
