package importer

import (
	"net/http"
	"strconv"

	"LTSLab/internal/calc/gas"
	"LTSLab/internal/pkg/httpio"

	"github.com/ansel1/merry"
)

// MaxUploadSize bounds the multipart body of an import.
const MaxUploadSize = 10 << 20

type Result struct {
	File    string      `json:"file"`
	Entries []gas.Entry `json:"entries"`
	Report  gas.Report  `json:"report"`
}

type Handler struct {
	Service *gas.Service
}

// Import reads the uploaded "file" field, treats its first row as a header
// unless header=false, and runs the composition through the gas service.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, fh, err := r.FormFile("file")
	if err != nil {
		httpio.WriteError(w, merry.Prepend(err, "file required").WithHTTPCode(http.StatusBadRequest))
		return
	}
	defer file.Close()

	header := true
	if v := r.FormValue("header"); v != "" {
		if header, err = strconv.ParseBool(v); err != nil {
			httpio.WriteError(w, merry.Errorf("header: %q is not a boolean", v).WithHTTPCode(http.StatusBadRequest))
			return
		}
	}

	rows, err := ReadTable(fh.Filename, file)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	entries, err := gas.ParseRows(rows, header)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	rep, err := h.Service.Run(entries)
	if err != nil {
		httpio.WriteError(w, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, Result{File: fh.Filename, Entries: entries, Report: rep})
}
