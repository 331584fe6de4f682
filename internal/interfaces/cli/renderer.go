package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
)

// TextRenderer renders pages as plain text. Progress and errors go to errOut
// so the bill table can be piped.
type TextRenderer struct {
	out    io.Writer
	errOut io.Writer
}

// NewTextRenderer creates a TextRenderer
func NewTextRenderer(out, errOut io.Writer) *TextRenderer {
	return &TextRenderer{out: out, errOut: errOut}
}

func (r *TextRenderer) RenderLoading() {
	fmt.Fprintln(r.errOut, "Chargement...")
}

func (r *TextRenderer) RenderError(message string) {
	fmt.Fprintf(r.errOut, "Erreur : %s\n", message)
}

func (r *TextRenderer) RenderBills(rows []entity.DisplayRow) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "Aucune note de frais")
		return
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNOM\tDATE\tMONTANT\tSTATUT\tJUSTIFICATIF")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s €\t%s\t%s\n",
			row.ID, row.Type, row.Name, row.Date, row.Amount.String(), row.Status, row.FileName)
	}
	w.Flush()
}

func (r *TextRenderer) ShowPreview(preview entity.Preview) {
	if preview.Blank {
		fmt.Fprintln(r.out, "Aucun justificatif disponible")
		return
	}
	fmt.Fprintf(r.out, "Justificatif : %s\n%s\n", preview.FileName, preview.URL)
}

func (r *TextRenderer) RenderForm(snapshot port.FormSnapshot) {
	if snapshot.Err != nil {
		fmt.Fprintf(r.errOut, "Erreur : %s\n", port.UserMessage(snapshot.Err))
		return
	}
	if snapshot.State == workflow.StateFileStaged.String() {
		fmt.Fprintf(r.errOut, "Justificatif prêt : %s\n", snapshot.StagedFileName)
	}
}

var _ port.Renderer = (*TextRenderer)(nil)

// Navigator maps logical pages onto CLI output: the bills page is rendered
// in place, the form page points at the command that opens it.
type Navigator struct {
	out     io.Writer
	onBills func()
}

// NewNavigator creates a Navigator; onBills renders the bills page
func NewNavigator(out io.Writer, onBills func()) *Navigator {
	return &Navigator{out: out, onBills: onBills}
}

func (n *Navigator) Navigate(path port.Path) {
	switch path {
	case port.PathBills:
		if n.onBills != nil {
			n.onBills()
		}
	case port.PathNewBill:
		fmt.Fprintln(n.out, "Nouvelle note de frais : billed bills new --help")
	}
}

var _ port.Navigator = (*Navigator)(nil)
