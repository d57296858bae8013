package batch

import "fjacquet/pdf-txt/internal/models"

// Progress receives batch progress events. Advance is called once per
// processed document, never concurrently.
type Progress interface {
	Start(total int)
	Advance(result models.DocumentResult)
	Finish()
}

// NoopProgress discards progress events.
type NoopProgress struct{}

func (NoopProgress) Start(int)                     {}
func (NoopProgress) Advance(models.DocumentResult) {}
func (NoopProgress) Finish()                       {}
