package output

import (
	"fmt"

	"github.com/fincalcs/calc-engine/pkg/constants"
)

// ValidateFormat checks if the output format is one of the supported formats.
func ValidateFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s, or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}
