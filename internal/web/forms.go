package web

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/costumeconnections/costumes/internal/imaging"
	"github.com/costumeconnections/costumes/internal/model"
)

// maxFormBytes bounds a submission body, photo included.
const maxFormBytes = imaging.MaxUploadBytes + 1<<20

// costumeForm is the body of the submission and edit forms.
type costumeForm struct {
	model.Costume
	CostumeID string
}

// readCostumeForm extracts the costume fields and costumeId from a
// URL-encoded, multipart or JSON body. Values are taken verbatim.
func readCostumeForm(r *http.Request) (costumeForm, error) {
	var f costumeForm

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return f, fmt.Errorf("reading json body: %w", err)
		}
		// model.Costume implements json.Unmarshaler, so costumeId is read
		// in a second pass.
		if err := json.Unmarshal(body, &f.Costume); err != nil {
			return f, fmt.Errorf("decoding json body: %w", err)
		}
		var ref struct {
			CostumeID string `json:"costumeId"`
		}
		if err := json.Unmarshal(body, &ref); err != nil {
			return f, fmt.Errorf("decoding json body: %w", err)
		}
		f.CostumeID = ref.CostumeID
		f.ID = ""
		return f, nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return f, fmt.Errorf("parsing multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return f, fmt.Errorf("parsing form: %w", err)
	}

	f.CostumeID = r.FormValue("costumeId")
	f.Status = r.FormValue("status")
	f.FirstName = r.FormValue("firstName")
	f.LastName = r.FormValue("lastName")
	f.Email = r.FormValue("email")
	f.City = r.FormValue("city")
	f.ImageURL = r.FormValue("imageUrl")
	f.Title = r.FormValue("title")
	f.Price = r.FormValue("price")
	f.Size = r.FormValue("size")
	f.Style = r.FormValue("style")
	f.Description = r.FormValue("description")
	return f, nil
}
