package drpai

import (
	"fmt"
	"io"
)

// Query writes the output tensor information of the frame in human readable
// format
func (o *Outputs) Query(w io.Writer) error {

	if _, err := fmt.Fprintf(w, "Output Number: %d\n", len(o.Output)); err != nil {
		return err
	}

	fmt.Fprintf(w, "Output tensors:\n")

	for _, attr := range o.attrs {
		if _, err := fmt.Fprintf(w, "  %s\n", attr.String()); err != nil {
			return err
		}
	}

	return nil
}
