package energy

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummaryCSV(t *testing.T) {
	m := &Metrics{
		EnergyToSolutionJ:  2000,
		TimeToSolutionS:    20,
		AveragePowerW:      100,
		PeakPowerW:         120,
		PeakPowerTimeS:     5,
		EnergyDelayProduct: 40000,
		Appliance:          Equivalent{Name: "a light bulb", Amount: 33.3, Unit: "s"},
	}

	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, WriteSummaryCSV(path, "1234", "measurement", m))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)

	assert.Equal(t, []string{"Metric", "Value", "Unit", "Definition", "JobID", "Group"}, records[0])
	assert.Equal(t, "Energy-to-solution", records[1][0])
	assert.Equal(t, "2000.00", records[1][1])
	assert.Equal(t, "J", records[1][2])
	assert.Equal(t, "120.00 at 5.00s", records[4][1])
	assert.Equal(t, "Equivalent to running a light bulb", records[6][0])
	assert.Equal(t, "seconds", records[6][2])

	for _, record := range records[1:] {
		assert.Equal(t, "1234", record[4])
		assert.Equal(t, "measurement", record[5])
	}
}
