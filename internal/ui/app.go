package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunApp opens the board window and blocks until it is closed. A non-empty
// shareLink is shown with a copy button so clients can join.
func RunApp(title, shareLink string, board *Board) {
	myApp := app.New()
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(900, 960))

	top := NewToolbar(board, myWindow)
	if shareLink != "" {
		link := widget.NewEntry()
		link.SetText(shareLink)
		link.Disable()
		copyBtn := widget.NewButton("Copy link", func() {
			myApp.Clipboard().SetContent(shareLink)
			board.Status().SetText("Link copied")
		})
		top = container.NewVBox(top, container.NewBorder(nil, nil, widget.NewLabel("Share:"), copyBtn, link))
	}

	myWindow.SetContent(container.NewBorder(top, nil, nil, nil, board))
	myWindow.ShowAndRun()
}
