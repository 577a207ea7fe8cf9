package tree

import "fmt"

//nolint:gochecknoglobals // Unit ladder
var units = []string{"B", "KB", "MB", "GB", "TB"}

// HumanReadable formats a byte count with two decimals, stepping through
// units by powers of 1024. Anything beyond TB is reported in PB.
func HumanReadable(bytes int64) string {
	value := float64(bytes)

	for _, unit := range units {
		if value < 1024 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}

		value /= 1024
	}

	return fmt.Sprintf("%.2f PB", value)
}
