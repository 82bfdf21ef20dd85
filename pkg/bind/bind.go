// Package bind decodes an HTTP request into a struct and validates it.
//
// The backend is encoding-sensitive: each endpoint accepts exactly one body
// encoding, and a request with any other Content-Type fails with
// ErrEncoding. Struct fields are matched by their `form` tag for form,
// multipart and query input, and by their `json` tag for JSON:
//
//	type deliverInput struct {
//	    OrderID int64  `form:"order_id"    validate:"required,gt=0"`
//	    State   string `form:"order_state" validate:"required"`
//	}
//
//	var in deliverInput
//	errs, err := bind.Query(r, &in)
package bind

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shashiranjanraj/storefront/config"
)

// ErrEncoding is returned when the request body is not in the endpoint's
// encoding.
var ErrEncoding = errors.New("bind: unexpected content type")

const (
	MediaJSON      = "application/json"
	MediaForm      = "application/x-www-form-urlencoded"
	MediaMultipart = "multipart/form-data"
)

// FieldErrors maps a field name to the rule it failed.
type FieldErrors map[string]string

// maxBodyBytes returns the configured request body size limit (default 4 MB).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "4194304"), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20
	}
	return n
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}()

// JSON decodes a JSON body into dest and validates it.
// Returns (errs, nil) on validation failures and (nil, err) when the body
// is in another encoding, malformed or too large.
func JSON(r *http.Request, dest interface{}) (FieldErrors, error) {
	if err := expect(r, MediaJSON); err != nil {
		return nil, err
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return Struct(dest), nil
}

// Form decodes an url-encoded body into dest and validates it.
func Form(r *http.Request, dest interface{}) (FieldErrors, error) {
	if err := expect(r, MediaForm); err != nil {
		return nil, err
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	return decodeValues(r.PostForm, dest)
}

// Multipart decodes the fields of a multipart body into dest and validates
// it. File parts stay available through File.
func Multipart(r *http.Request, dest interface{}) (FieldErrors, error) {
	if err := expect(r, MediaMultipart); err != nil {
		return nil, err
	}
	if err := r.ParseMultipartForm(maxBodyBytes()); err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}
	return decodeValues(url.Values(r.MultipartForm.Value), dest)
}

// Query decodes the query string into dest and validates it.
func Query(r *http.Request, dest interface{}) (FieldErrors, error) {
	return decodeValues(r.URL.Query(), dest)
}

// File returns the named file part of a request already read by Multipart.
func File(r *http.Request, field string) (*multipart.FileHeader, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, fmt.Errorf("bind: missing file %q", field)
	}
	return r.MultipartForm.File[field][0], nil
}

// Struct validates dest and returns its field errors, or nil.
func Struct(dest interface{}) FieldErrors {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Field()] = rule
	}
	return out
}

// String renders the errors in a stable order, e.g. "email: required".
func (e FieldErrors) String() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, ", ")
}

func expect(r *http.Request, want string) error {
	got, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || got != want {
		return fmt.Errorf("%w: want %s", ErrEncoding, want)
	}
	return nil
}

var textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// decodeValues copies vals into the `form`-tagged fields of dest, a pointer
// to a struct, then validates it. Parse failures are field errors.
func decodeValues(vals url.Values, dest interface{}) (FieldErrors, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("bind: dest must be a pointer to a struct, got %T", dest)
	}
	rv = rv.Elem()
	rt := rv.Type()

	errs := FieldErrors{}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := strings.Split(f.Tag.Get("form"), ",")[0]
		if name == "" || name == "-" || !vals.Has(name) {
			continue
		}
		if err := setField(rv.Field(i), vals.Get(name)); err != nil {
			errs[name] = "invalid"
		}
	}
	if len(errs) > 0 {
		return errs, nil
	}
	return Struct(dest), nil
}

func setField(v reflect.Value, raw string) error {
	if v.CanAddr() && v.Addr().Type().Implements(textUnmarshaler) {
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw))
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int64, reflect.Int32:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		v.SetBool(b)
	default:
		return fmt.Errorf("bind: unsupported field kind %s", v.Kind())
	}
	return nil
}
