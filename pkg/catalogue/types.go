package catalogue

// Metric indexes into a project's metric vector.
const (
	Cost = iota
	CO2
	NO
	SO2
	PM25
	CH4
	VOC
	CO
	NH3
	BC
	N2O

	// MetricCount is the length of every metric vector.
	MetricCount
)

// GoalCount is the length of a goals vector: one target per pollutant, Cost excluded.
const GoalCount = MetricCount - 1

// Columns is the fixed metric order shared by the catalogue, requests and tableaus.
var Columns = [MetricCount]string{
	"Cost", "CO2", "NO", "SO2", "PM2.5", "CH4", "VOC", "CO", "NH3", "BC", "N2O",
}

// Pollutants returns the column names after Cost, in goal order.
func Pollutants() []string {
	out := make([]string, GoalCount)
	copy(out, Columns[1:])
	return out
}

// Project is one candidate mitigation project.
type Project struct {
	ID      int       `yaml:"id" json:"id"`
	Name    string    `yaml:"name" json:"name"`
	Metrics []float64 `yaml:"metrics" json:"metrics"`
}

// Metric returns the metric at index i, or 0 when the vector is short.
func (p Project) Metric(i int) float64 {
	if i < 0 || i >= len(p.Metrics) {
		return 0
	}
	return p.Metrics[i]
}

type file struct {
	Projects []Project `yaml:"projects"`
}
