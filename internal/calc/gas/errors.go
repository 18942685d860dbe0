package gas

import (
	"net/http"

	"github.com/ansel1/merry"
)

var (
	ErrMalformedTable   = merry.New("malformed composition table").WithHTTPCode(http.StatusBadRequest)
	ErrUnknownComponent = merry.New("unknown component").WithHTTPCode(http.StatusUnprocessableEntity)
	ErrCompositionSum   = merry.New("composition does not sum to 100%").WithHTTPCode(http.StatusUnprocessableEntity)
	ErrNoSamples        = merry.New("no samples").WithHTTPCode(http.StatusBadRequest)
)
