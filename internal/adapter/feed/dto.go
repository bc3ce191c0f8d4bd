package feed

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
)

// flexFloat decodes a JSON number or a numeric string. Anything else leaves it invalid.
type flexFloat struct {
	value float64
	valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	f.value, f.valid = v, true
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.valid {
		return nil
	}
	v := f.value
	return &v
}

type recordDTO struct {
	IcaoAddress string    `json:"IcaoAddress"`
	Latitude    flexFloat `json:"Latitude"`
	Longitude   flexFloat `json:"Longitude"`
	Heading     flexFloat `json:"Heading"`
}

// toRecord decodes one element of the snapshot. An element that does not
// decode becomes a record with no id so the reconciler skips it.
func toRecord(raw json.RawMessage) models.EntityRecord {
	var dto recordDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return models.EntityRecord{}
	}
	return models.EntityRecord{
		ID:        strings.TrimSpace(dto.IcaoAddress),
		Latitude:  dto.Latitude.ptr(),
		Longitude: dto.Longitude.ptr(),
		Heading:   dto.Heading.ptr(),
	}
}
