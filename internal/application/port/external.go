package port

import "github.com/garyjia/billed/internal/domain/entity"

// Path identifies a logical page
type Path string

const (
	PathBills   Path = "#employee/bills"
	PathNewBill Path = "#employee/bill/new"
)

// Navigator moves between logical pages. Fire-and-forget.
type Navigator interface {
	Navigate(path Path)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path Path)

// Navigate calls f(path)
func (f NavigatorFunc) Navigate(path Path) {
	f(path)
}

// FormSnapshot is the state handed to the renderer for the new-bill form
type FormSnapshot struct {
	State          string
	Fields         entity.FormFields
	StagedFileName string
	Err            error
}

// Renderer turns workflow state into a displayable page
type Renderer interface {
	RenderLoading()
	RenderError(message string)
	RenderBills(rows []entity.DisplayRow)
	ShowPreview(preview entity.Preview)
	RenderForm(snapshot FormSnapshot)
}
