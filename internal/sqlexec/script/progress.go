package script

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

type progressBar struct {
	pb *progressbar.ProgressBar
}

// newProgressBar returns a bar advancing once per script. A nil writer
// disables rendering.
func newProgressBar(writer io.Writer, total int) *progressBar {
	if writer == nil {
		writer = io.Discard
	}

	pb := progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionSetDescription("running scripts"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	_ = pb.Set(0)

	return &progressBar{pb: pb}
}

func (p *progressBar) Inc() {
	_ = p.pb.Add(1)
}

func (p *progressBar) Finish() {
	_ = p.pb.Finish()
	_ = p.pb.Close()
}
