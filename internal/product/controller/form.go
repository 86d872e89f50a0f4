package controller

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"inventario/internal/domain"
	apperrors "inventario/internal/errors"
)

const (
	imageField   = "imagen"
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// DECIMAL(10,2)
var maxPrice = decimal.RequireFromString("99999999.99")

// fieldSource gives uniform access to multipart, urlencoded and JSON bodies.
type fieldSource interface {
	// value returns the field as text. null is true for an explicit JSON null.
	value(name string) (text string, null bool, present bool)
}

type formFields map[string][]string

func (f formFields) value(name string) (string, bool, bool) {
	v, ok := f[name]
	if !ok || len(v) == 0 {
		return "", false, false
	}
	return v[0], false, true
}

type jsonFields map[string]json.RawMessage

func (f jsonFields) value(name string) (string, bool, bool) {
	raw, ok := f[name]
	if !ok {
		return "", false, false
	}
	text, null := scalarText(raw)
	return text, null, true
}

// scalarText unquotes JSON strings and returns numbers and booleans as their
// literal text. Arrays and objects come back verbatim and fail later parsing.
func scalarText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", true
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s, false
		}
	}
	return string(trimmed), false
}

// readProductBody returns the request fields and the optional image. Multipart
// bodies are capped at maxBytes.
func readProductBody(w http.ResponseWriter, r *http.Request, maxBytes int64) (fieldSource, *domain.Image, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, nil, bodyError(err)
		}
		image, err := readImage(r)
		if err != nil {
			return nil, nil, err
		}
		return formFields(r.MultipartForm.Value), image, nil

	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseForm(); err != nil {
			return nil, nil, bodyError(err)
		}
		return formFields(r.PostForm), nil, nil

	default:
		fields := jsonFields{}
		if err := decodeJSON(w, r, maxBytes, &fields); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, nil, err
		}
		return fields, nil, nil
	}
}

// decodeJSON reads at most maxBytes of JSON into v. An empty body is
// returned as io.EOF so callers can decide whether it is allowed.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, io.EOF):
		return io.EOF
	}

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return bodyError(err)
	}
	return invalidJSON()
}

func readImage(r *http.Request) (*domain.Image, error) {
	file, header, err := r.FormFile(imageField)
	if stderrors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, bodyError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, bodyError(err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("invalid request", apperrors.ValidationDetail{
			Field:   imageField,
			Message: "file is empty",
		})
	}

	return &domain.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return apperrors.NewValidationError("request body too large", apperrors.ValidationDetail{
			Field:   "body",
			Message: fmt.Sprintf("must not exceed %d bytes", tooLarge.Limit),
		})
	}
	return apperrors.NewValidationError("invalid request body", apperrors.ValidationDetail{
		Field:   "body",
		Message: "could not read form data",
	})
}

func invalidJSON() error {
	return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
		Field:   "body",
		Message: "request body must be valid JSON",
	})
}

// fieldParser converts text fields and accumulates every failure.
type fieldParser struct {
	src     fieldSource
	details []apperrors.ValidationDetail
}

func (p *fieldParser) fail(field, message string) {
	p.details = append(p.details, apperrors.ValidationDetail{Field: field, Message: message})
}

func (p *fieldParser) err() error {
	if len(p.details) == 0 {
		return nil
	}
	return apperrors.NewValidationError("invalid request", p.details...)
}

func (p *fieldParser) name(required bool) *string {
	text, null, present := p.src.value("nombre")
	if !present {
		if required {
			p.fail("nombre", "is required")
		}
		return nil
	}
	text = strings.TrimSpace(text)
	if null || text == "" {
		p.fail("nombre", "must not be empty")
		return nil
	}
	return &text
}

// description treats "" and "null" as a request to clear the field.
func (p *fieldParser) description() domain.Nullable[string] {
	text, null, present := p.src.value("descripcion")
	if !present {
		return domain.Nullable[string]{}
	}
	if null || text == "" || text == "null" {
		return domain.Null[string]()
	}
	return domain.Some(text)
}

func (p *fieldParser) price(required bool) *decimal.Decimal {
	text, null, present := p.src.value("precio")
	if !present {
		if required {
			p.fail("precio", "is required")
		}
		return nil
	}
	if null {
		p.fail("precio", "must not be null")
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		p.fail("precio", "must be a number")
		return nil
	}
	if d.IsNegative() {
		p.fail("precio", "must not be negative")
		return nil
	}
	if d.GreaterThan(maxPrice) {
		p.fail("precio", "exceeds the maximum price")
		return nil
	}
	if !d.Equal(d.Round(2)) {
		p.fail("precio", "must have at most 2 decimal places")
		return nil
	}
	return &d
}

func (p *fieldParser) stock(required bool) *int {
	text, null, present := p.src.value("stock")
	if !present {
		if required {
			p.fail("stock", "is required")
		}
		return nil
	}
	if null {
		p.fail("stock", "must not be null")
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		p.fail("stock", "must be an integer")
		return nil
	}
	if n < 0 {
		p.fail("stock", "must not be negative")
		return nil
	}
	return &n
}

func (p *fieldParser) dailyOffer() *bool {
	text, null, present := p.src.value("ofertaDiaria")
	if !present {
		return nil
	}
	if null {
		p.fail("ofertaDiaria", "must be true or false")
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(text))
	if err != nil {
		p.fail("ofertaDiaria", "must be true or false")
		return nil
	}
	return &b
}

// expiresAt accepts a calendar date or an RFC 3339 timestamp; "" and "null"
// clear the field.
func (p *fieldParser) expiresAt() domain.Nullable[time.Time] {
	text, null, present := p.src.value("vencimiento")
	if !present {
		return domain.Nullable[time.Time]{}
	}
	text = strings.TrimSpace(text)
	if null || text == "" || text == "null" {
		return domain.Null[time.Time]()
	}
	t, err := parseDate(text)
	if err != nil {
		p.fail("vencimiento", "must be a date (YYYY-MM-DD)")
		return domain.Nullable[time.Time]{}
	}
	return domain.Some(t)
}

func parseDate(text string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, text); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, text)
}

func parseNewProduct(src fieldSource) (domain.NewProduct, error) {
	p := &fieldParser{src: src}

	name := p.name(true)
	description := p.description()
	price := p.price(true)
	stock := p.stock(true)
	dailyOffer := p.dailyOffer()
	expiresAt := p.expiresAt()

	if err := p.err(); err != nil {
		return domain.NewProduct{}, err
	}

	np := domain.NewProduct{
		Name:        *name,
		Description: description.Value,
		Price:       *price,
		Stock:       *stock,
		ExpiresAt:   expiresAt.Value,
	}
	if dailyOffer != nil {
		np.DailyOffer = *dailyOffer
	}
	return np, nil
}

func parseProductPatch(src fieldSource) (domain.ProductPatch, error) {
	p := &fieldParser{src: src}

	patch := domain.ProductPatch{
		Name:        p.name(false),
		Description: p.description(),
		Price:       p.price(false),
		Stock:       p.stock(false),
		DailyOffer:  p.dailyOffer(),
		ExpiresAt:   p.expiresAt(),
	}

	if err := p.err(); err != nil {
		return domain.ProductPatch{}, err
	}
	return patch, nil
}

func parsePagination(q url.Values) (skip, take int, err error) {
	p := &fieldParser{}
	page := positiveQueryInt(p, q, "page", defaultPage)
	limit := positiveQueryInt(p, q, "limit", defaultLimit)
	if limit > maxLimit {
		p.fail("limit", fmt.Sprintf("must not exceed %d", maxLimit))
	}
	if err := p.err(); err != nil {
		return 0, 0, err
	}
	return (page - 1) * limit, limit, nil
}

func positiveQueryInt(p *fieldParser, q url.Values, name string, fallback int) int {
	text := strings.TrimSpace(q.Get(name))
	if text == "" {
		return fallback
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		p.fail(name, "must be a positive integer")
		return fallback
	}
	return n
}

func parseID(text string) (int, error) {
	id, err := strconv.Atoi(text)
	if err != nil || id < 1 {
		return 0, apperrors.NewValidationError("invalid id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a positive integer",
		})
	}
	return id, nil
}

// parseQuantity accepts a JSON number or numeric string.
func parseQuantity(raw json.RawMessage) (int, error) {
	text, null := scalarText(raw)
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if null || err != nil || n < 1 {
		return 0, apperrors.NewValidationError("invalid quantity", apperrors.ValidationDetail{
			Field:   "cantidad",
			Message: "must be a positive integer",
		})
	}
	return n, nil
}

func parseAdjustPrices(idsRaw, percentageRaw json.RawMessage) ([]int, float64, error) {
	p := &fieldParser{}

	var ids []int
	if text, null := scalarText(idsRaw); null {
		p.fail("ids", "select at least one product")
	} else if err := json.Unmarshal([]byte(text), &ids); err != nil {
		p.fail("ids", "must be an array of product ids")
	} else if len(ids) == 0 {
		p.fail("ids", "select at least one product")
	} else {
		for _, id := range ids {
			if id < 1 {
				p.fail("ids", "every id must be a positive integer")
				break
			}
		}
	}

	var percentage float64
	text, null := scalarText(percentageRaw)
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	switch {
	case null || err != nil || math.IsNaN(f) || math.IsInf(f, 0):
		p.fail("porcentaje", "must be a number")
	case f < -100:
		p.fail("porcentaje", "must not be below -100")
	default:
		percentage = f
	}

	if err := p.err(); err != nil {
		return nil, 0, err
	}
	return ids, percentage, nil
}
