package handlers

import (
	"net/http"

	"github.com/crucial707/replydesk/internal/prompt"
)

// Options serves the intent/tone/length catalog so UI option sets stay in
// sync with the prompt builder.
func Options(w http.ResponseWriter, r *http.Request) {
	JSON(w, prompt.DefaultCatalog(), http.StatusOK)
}
