package dialogue

// Presenter renders the conversation as it happens. Fragment is called once per
// streamed fragment as soon as it arrives. End is always called, including on
// failure paths, and must restore any terminal styling applied by Begin.
type Presenter interface {
	Begin(multiline bool)
	Assistant()
	User()
	Fragment(text string)
	End()
}

type nopPresenter struct{}

func (nopPresenter) Begin(bool)      {}
func (nopPresenter) Assistant()      {}
func (nopPresenter) User()           {}
func (nopPresenter) Fragment(string) {}
func (nopPresenter) End()            {}
