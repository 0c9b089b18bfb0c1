package formats

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/types"
)

// maxListed is how many paths or keys of a set the table shows before summarizing
const maxListed = 3

func renderTable(w io.Writer, items []hwm.HWM) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSOURCE\tPROCESS\tVALUE\tMODIFIED")
	for _, h := range items {
		kind, err := hwm.KeyFor(h)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			h.Name(),
			kind,
			sourceOf(h),
			h.Process().QualifiedName(),
			cell(h),
			h.ModifiedTime().Format(time.RFC3339),
		)
	}
	return tw.Flush()
}

func sourceOf(h hwm.HWM) string {
	switch x := h.(type) {
	case hwm.FileListHWM:
		return x.Source().QualifiedName()
	case interface{ Source() types.Table }:
		return x.Source().QualifiedName()
	}
	return ""
}

// cell keeps table rows on one line
func cell(h hwm.HWM) string {
	switch x := h.(type) {
	case hwm.FileListHWM:
		paths := x.Paths()
		entries := make([]string, len(paths))
		for i, p := range paths {
			entries[i] = string(p)
		}
		return summarize(entries)
	case hwm.KeyValueIntHWM:
		return summarize(strings.Split(x.SerializeValue(), "\n"))
	}
	return h.SerializeValue()
}

func summarize(entries []string) string {
	if len(entries) <= maxListed {
		return strings.Join(entries, ", ")
	}
	return strings.Join(entries[:maxListed], ", ") + fmt.Sprintf(" (+%d more)", len(entries)-maxListed)
}

func init() {
	mustRegister(&OutputFormat{Name: "table", Render: renderTable})
}
