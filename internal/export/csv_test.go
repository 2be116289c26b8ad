package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pallet-cubing-backend/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func okRecord() model.PalletRecord {
	return model.PalletRecord{
		Timestamp:         "2024-03-01 08:15:00",
		Terminal:          "401",
		Receiver:          "77",
		TrailerNumber:     "401252",
		ProNumberIncoming: "1234567890",
		ProPrefix:         "123",
		ProNumberErb:      "4567890",
		FreightType:       "Fresh",
		Temp1:             "35",
		ExpectedPallets:   5,
		PalletSequence:    1,
		PalletHeight:      60,
		Condition:         model.ConditionOK,
		Status:            model.StatusNew,
	}
}

func TestRender_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil))
	assert.Equal(t,
		"Timestamp,Terminal,Receiver,Trailer Number,PRO Number Incoming,PRO Prefix,PRO Number Erb,Expected Pallets for PRO,Pallet Number,Freight Type,Temp1,Temp2,Pallet Height,Condition,OS&D Reason,OS&D Quantity,OS&D Quantity Type,Status\n",
		buf.String())
}

func TestRow(t *testing.T) {
	testCases := []struct {
		name     string
		record   func() model.PalletRecord
		expected string
	}{
		{
			name:     "OK pallet with nulls",
			record:   okRecord,
			expected: "2024-03-01 08:15:00,401,77,401252,1234567890,123,4567890,5,1,Fresh,35F,N/A,60,OK,N/A,N/A,N/A,NEW",
		},
		{
			name: "OS&D pallet with comma in reason",
			record: func() model.PalletRecord {
				r := okRecord()
				r.FreightType = "Dual"
				r.Temp2 = strPtr("-10")
				r.Condition = model.ConditionOSD
				r.OsdReason = strPtr("Damaged, crushed")
				r.OsdQuantity = intPtr(4)
				r.OsdQuantityType = strPtr("Cases")
				return r
			},
			expected: `2024-03-01 08:15:00,401,77,401252,1234567890,123,4567890,5,1,Dual,35F,-10F,60,OS&D,"Damaged, crushed",4,Cases,NEW`,
		},
		{
			name: "Entered unit is not doubled and blank temp is N/A",
			record: func() model.PalletRecord {
				r := okRecord()
				r.Temp1 = "35°F"
				r.Temp2 = strPtr("  ")
				return r
			},
			expected: "2024-03-01 08:15:00,401,77,401252,1234567890,123,4567890,5,1,Fresh,35F,N/A,60,OK,N/A,N/A,N/A,NEW",
		},
		{
			name: "Quotes and newlines are escaped",
			record: func() model.PalletRecord {
				r := okRecord()
				r.Condition = model.ConditionOSD
				r.OsdReason = strPtr("Other: said \"wet\"\nbox")
				return r
			},
			expected: "2024-03-01 08:15:00,401,77,401252,1234567890,123,4567890,5,1,Fresh,35F,N/A,60,OS&D,\"Other: said \"\"wet\"\"\nbox\",N/A,N/A,NEW",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.record()
			row := Row(&r)
			assert.Len(t, row, len(Header))
			assert.Equal(t, tc.expected, strings.Join(row, ","))
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "CubingReports")
	records := []model.PalletRecord{okRecord(), okRecord()}
	records[1].PalletSequence = 2

	path, err := WriteFile(dir, "401252", records)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "CubingData_401252.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, lines, 3)

	// A re-export replaces the previous file.
	path, err = WriteFile(dir, "401252", records[:1])
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
