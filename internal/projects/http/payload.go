package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-api/internal/assets"
	"github.com/devfolio/portfolio-api/internal/projects/domain"
)

const (
	imageField = "image"
	// room for the form fields on top of the image itself
	maxBodySize = assets.MaxSize + 1<<20
)

// readPayload collects the request body into the loosely-typed map the
// normalization step consumes. Multipart bodies may carry an image file.
func readPayload(c *gin.Context) (map[string]any, *assets.Asset, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return readMultipart(c)
	case "application/x-www-form-urlencoded":
		if err := c.Request.ParseForm(); err != nil {
			return nil, nil, bodyError(err)
		}
		return formValues(c.Request.PostForm), nil, nil
	default:
		raw, err := readJSON(c.Request.Body)
		return raw, nil, err
	}
}

func readJSON(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	raw := map[string]any{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return raw, nil
		}
		return nil, bodyError(err)
	}
	return raw, nil
}

func readMultipart(c *gin.Context) (map[string]any, *assets.Asset, error) {
	if err := c.Request.ParseMultipartForm(maxBodySize); err != nil {
		return nil, nil, bodyError(err)
	}
	form := c.Request.MultipartForm
	raw := formValues(form.Value)

	files := form.File[imageField]
	if len(files) == 0 {
		return raw, nil, nil
	}

	fh := files[0]
	if fh.Size > assets.MaxSize {
		return nil, nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, assets.MaxSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, bodyError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, bodyError(err)
	}

	return raw, &assets.Asset{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

// formValues keeps single values as strings and repeated ones as lists.
func formValues(values map[string][]string) map[string]any {
	raw := make(map[string]any, len(values))
	for k, v := range values {
		switch len(v) {
		case 0:
		case 1:
			raw[k] = v[0]
		default:
			raw[k] = v
		}
	}
	return raw
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: request body too large", domain.ErrValidation)
	}
	if strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: request body too large", domain.ErrValidation)
	}
	return fmt.Errorf("%w: invalid body", domain.ErrValidation)
}
