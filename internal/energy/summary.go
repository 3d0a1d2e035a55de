package energy

import (
	"encoding/csv"
	"fmt"
	"os"
)

// summaryRow is one human-readable line of the metric summary artifact.
type summaryRow struct {
	Metric     string
	Value      string
	Unit       string
	Definition string
}

func summaryRows(m *Metrics) []summaryRow {
	return []summaryRow{
		{
			Metric:     "Energy-to-solution",
			Value:      fmt.Sprintf("%.2f", m.EnergyToSolutionJ),
			Unit:       "J",
			Definition: "Total energy consumed by the job from start to finish.",
		},
		{
			Metric:     "Time-to-solution",
			Value:      fmt.Sprintf("%.2f", m.TimeToSolutionS),
			Unit:       "s",
			Definition: "Total runtime of the job (wall-clock time from start to end).",
		},
		{
			Metric:     "Average power",
			Value:      fmt.Sprintf("%.2f", m.AveragePowerW),
			Unit:       "W",
			Definition: "Mean power draw during the job.",
		},
		{
			Metric:     "Peak power",
			Value:      fmt.Sprintf("%.2f at %.2fs", m.PeakPowerW, m.PeakPowerTimeS),
			Unit:       "W",
			Definition: "Maximum instantaneous power draw observed during execution.",
		},
		{
			Metric:     "Energy-Delay Product (EDP)",
			Value:      fmt.Sprintf("%.2f", m.EnergyDelayProduct),
			Unit:       "J·s",
			Definition: "Energy-to-solution × Time-to-solution (lower is better).",
		},
		{
			Metric:     fmt.Sprintf("Equivalent to running %s", m.Appliance.Name),
			Value:      fmt.Sprintf("%.2f", m.Appliance.Amount),
			Unit:       m.Appliance.UnitName(),
			Definition: "Everyday appliance analogy for the job's total energy.",
		},
	}
}

// WriteSummaryCSV writes the metric summary artifact for one (job, group).
func WriteSummaryCSV(path, jobID, groupName string, m *Metrics) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"Metric", "Value", "Unit", "Definition", "JobID", "Group"}); err != nil {
		return err
	}
	for _, row := range summaryRows(m) {
		record := []string{row.Metric, row.Value, row.Unit, row.Definition, jobID, groupName}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}
