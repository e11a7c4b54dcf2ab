package domain

// WorkTypeOption is one selectable work type. Value is what the backend
// stores; Label is the display text.
type WorkTypeOption struct {
	Value string
	Label string
}

// WorkTypes is the fixed list offered by the report form.
var WorkTypes = []WorkTypeOption{
	{Value: "구축지원", Label: "Deployment support"},
	{Value: "유지보수", Label: "Maintenance"},
	{Value: "정기점검", Label: "Regular inspection"},
	{Value: "팀원백업", Label: "Team member backup"},
	{Value: "사내업무", Label: "Internal work"},
	{Value: "업무지원", Label: "Work support"},
}

// SupportProducts is the product catalog a report can reference.
var SupportProducts = []string{
	"ksbiz", "nxKey", "transkey", "nxCR", "nxQR",
	"AppFree", "mtweb", "mvweb",
	"Wireless", "mT CS", "mV CS", "AC", "AI",
}

// WorkTypeLabel returns the display label for a stored work type value,
// falling back to the raw value for types not in the list.
func WorkTypeLabel(value string) string {
	for _, o := range WorkTypes {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// ImportMode selects how an uploaded spreadsheet merges with existing data.
type ImportMode string

const (
	ImportReplace ImportMode = "replace"
	ImportAppend  ImportMode = "append"
)

// Valid reports whether m is a known import mode.
func (m ImportMode) Valid() bool {
	return m == ImportReplace || m == ImportAppend
}
