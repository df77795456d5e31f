// Package normalize maps raw upstream records onto the canonical property
// schema. Normalization is total: malformed input produces a property with
// conservative defaults, never an error.
package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"inmofeed/internal/models"
	"inmofeed/internal/overrides"
	"inmofeed/internal/source"
)

// PriceScaleThreshold bounds the WooCommerce abbreviated-thousands heuristic:
// a price p with 0 < p < threshold is interpreted as thousands and scaled
// x1000. Known to be fragile for true sub-threshold listings; the upstream
// gives no signal to tell the cases apart.
const PriceScaleThreshold = 10000

// Last-resort defaults when every resolution tier comes up empty.
const (
	defaultBedrooms  = 2
	defaultBathrooms = 1
	defaultArea      = 80
	defaultFloor     = 1

	defaultTitle       = "Untitled property"
	defaultDescription = "Description not available."
)

var (
	bedroomsRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:dormitorios?|habitaciones?|hab\.?|bedrooms?|beds?)\b`)
	bathroomsRe = regexp.MustCompile(`(?i)(\d+)\s*(?:baños?|banos?|aseos?|bathrooms?|baths?)\b`)
	areaRe      = regexp.MustCompile(`(?i)(\d+)\s*(?:m2|m²|metros(?:\s+cuadrados)?|sqm)\b`)
	floorRe     = regexp.MustCompile(`(?i)(?:planta|floor)\s*(\d+)`)
)

// Place names that show up in garbage address fields from the WooCommerce
// theme demo content. An address containing one of these is discarded.
var unrelatedPlaces = []string{"australia", "sydney", "melbourne", "queensland"}

// Key spellings tried, in order, for each structured field.
var (
	bedroomKeys  = []string{"bedrooms", "habitaciones", "dormitorios", "rooms", "num_bedrooms"}
	bathroomKeys = []string{"bathrooms", "banos", "baños", "aseos", "num_bathrooms"}
	areaKeys     = []string{"area", "surface", "superficie", "m2", "sqm", "square_meters", "squareMeters"}
	floorKeys    = []string{"floor", "planta"}
	addressKeys  = []string{"address", "location", "direccion", "dirección", "ubicacion", "ubicación", "city"}
)

// Normalizer converts raw source records into canonical properties.
type Normalizer struct {
	overrides *overrides.Store
	now       func() time.Time
	log       *zap.SugaredLogger
}

type Option func(*Normalizer)

// WithClock injects the timestamp source used for missing dates.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

func New(ov *overrides.Store, log *zap.SugaredLogger, opts ...Option) *Normalizer {
	if ov == nil {
		ov = overrides.Empty()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	n := &Normalizer{overrides: ov, now: time.Now, log: log}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize dispatches on the record's source.
func (n *Normalizer) Normalize(src models.SourceID, raw source.Raw) models.Property {
	if src == models.SourceWooCommerce {
		return n.FromWooCommerce(raw)
	}
	return n.FromMongo(raw)
}

// FromWooCommerce maps a WooCommerce product onto the canonical schema.
func (n *Normalizer) FromWooCommerce(raw source.Raw) models.Property {
	id := intString(raw["id"])
	title := str(raw, "name")
	desc := str(raw, "description")
	if desc == "" {
		desc = str(raw, "short_description")
	}

	// Custom listing fields live in meta_data; fall back to top-level keys
	// for themes that flatten them.
	meta := metaData(raw)
	structured := func(keys []string) float64 {
		if v := num(meta, keys...); v > 0 {
			return v
		}
		return num(raw, keys...)
	}
	structuredStr := func(keys []string) string {
		if v := str(meta, keys...); v != "" {
			return v
		}
		return str(raw, keys...)
	}

	ov, _ := n.overrides.Lookup(models.SourceWooCommerce, id)

	p := models.Property{
		ID:          id,
		Source:      models.SourceWooCommerce,
		Title:       title,
		Description: desc,
		Price:       n.scalePrice(id, num(raw, "price", "regular_price")),
		Bedrooms:    n.resolveCount(structured(bedroomKeys), desc, bedroomsRe, ov.Bedrooms, defaultBedrooms),
		Bathrooms:   n.resolveCount(structured(bathroomKeys), desc, bathroomsRe, ov.Bathrooms, defaultBathrooms),
		Area:        n.resolveCount(structured(areaKeys), desc, areaRe, ov.Area, defaultArea),
		Floor:       n.resolveCount(structured(floorKeys), desc, floorRe, ov.Floor, defaultFloor),
		Address:     n.resolveAddress(structuredStr(addressKeys), ov.Address),
		Images:      images(raw["images"], title),
		Categories:  names(raw["categories"]),
		Features:    names(raw["tags"]),
		CreatedAt:   n.date(raw, "date_created"),
		UpdatedAt:   n.date(raw, "date_modified"),
	}
	return n.finish(p)
}

// FromMongo maps a raw listings-DB document onto the canonical schema.
// Handles both JSON-decoded documents (REST mode) and bson-decoded ones
// (direct mode).
func (n *Normalizer) FromMongo(raw source.Raw) models.Property {
	id := mongoID(raw["_id"])
	title := str(raw, "title", "name")
	desc := str(raw, "description")

	ov, _ := n.overrides.Lookup(models.SourceMongoDB, id)

	price := num(raw, "price")
	if price < 0 {
		price = 0
	}

	p := models.Property{
		ID:          id,
		Source:      models.SourceMongoDB,
		Title:       title,
		Description: desc,
		Price:       price,
		Bedrooms:    n.resolveCount(num(raw, bedroomKeys...), desc, bedroomsRe, ov.Bedrooms, defaultBedrooms),
		Bathrooms:   n.resolveCount(num(raw, bathroomKeys...), desc, bathroomsRe, ov.Bathrooms, defaultBathrooms),
		Area:        n.resolveCount(num(raw, areaKeys...), desc, areaRe, ov.Area, defaultArea),
		Floor:       n.resolveCount(num(raw, floorKeys...), desc, floorRe, ov.Floor, defaultFloor),
		Address:     n.resolveAddress(str(raw, addressKeys...), ov.Address),
		Images:      images(raw["images"], title),
		Categories:  strList(raw["categories"]),
		Features:    strList(raw["features"]),
		CreatedAt:   n.date(raw, "createdAt"),
		UpdatedAt:   n.date(raw, "updatedAt"),
	}
	return n.finish(p)
}

func (n *Normalizer) finish(p models.Property) models.Property {
	if p.Title == "" {
		p.Title = defaultTitle
	}
	if p.Description == "" {
		p.Description = defaultDescription
	}
	if p.Price < 0 {
		p.Price = 0
	}
	return p
}

// scalePrice applies the abbreviated-thousands heuristic to WooCommerce
// prices.
func (n *Normalizer) scalePrice(id string, p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p < PriceScaleThreshold {
		n.log.Warnw("price scaled x1000 by abbreviated-thousands heuristic",
			"source", models.SourceWooCommerce, "id", id, "raw_price", p)
		return p * 1000
	}
	return p
}

// resolveCount runs the field resolution chain: structured value, then regex
// over the description, then the override table, then the default. A value
// that is zero or negative at any tier counts as missing.
func (n *Normalizer) resolveCount(structured float64, desc string, re *regexp.Regexp, override, def int) int {
	if v := int(structured); v > 0 {
		return v
	}
	if m := re.FindStringSubmatch(desc); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			return v
		}
	}
	if override > 0 {
		return override
	}
	return def
}

// resolveAddress filters out known-garbage values before falling back to the
// override table.
func (n *Normalizer) resolveAddress(structured, override string) string {
	if s := strings.TrimSpace(structured); s != "" && addressPlausible(s) {
		return s
	}
	return override
}

func addressPlausible(s string) bool {
	lower := strings.ToLower(s)
	for _, place := range unrelatedPlaces {
		if strings.Contains(lower, place) {
			return false
		}
	}
	return true
}

func (n *Normalizer) date(raw source.Raw, key string) time.Time {
	switch v := raw[key].(type) {
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	case primitive.DateTime:
		return v.Time()
	case time.Time:
		return v
	}
	return n.now()
}

// ───── value coercion helpers ─────

// str returns the first non-empty string under any of keys.
func str(raw source.Raw, keys ...string) string {
	if raw == nil {
		return ""
	}
	for _, k := range keys {
		if s, ok := raw[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// num returns the first parseable numeric value under any of keys, or 0.
func num(raw source.Raw, keys ...string) float64 {
	if raw == nil {
		return 0
	}
	for _, k := range keys {
		if f, ok := toFloat(raw[k]); ok {
			return f
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// intString renders a numeric id as a plain integer string.
func intString(v any) string {
	if f, ok := toFloat(v); ok {
		return strconv.FormatInt(int64(f), 10)
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// mongoID renders _id in any of its wire shapes (hex string, ObjectID, or
// extended-JSON {"$oid": ...}).
func mongoID(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case primitive.ObjectID:
		return t.Hex()
	case map[string]any:
		if oid, ok := t["$oid"].(string); ok {
			return oid
		}
	}
	return ""
}

func asSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case primitive.A:
		return t
	}
	return nil
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case primitive.M:
		return t
	}
	return nil
}

// metaData flattens a WooCommerce meta_data array of {key, value} pairs.
func metaData(raw source.Raw) source.Raw {
	out := source.Raw{}
	for _, item := range asSlice(raw["meta_data"]) {
		m := asMap(item)
		if m == nil {
			continue
		}
		k, ok := m["key"].(string)
		if !ok {
			continue
		}
		out[k] = m["value"]
	}
	return out
}

// images accepts either a list of {src, alt} objects or a list of URL
// strings; alt defaults to the listing title.
func images(v any, title string) []models.Image {
	var out []models.Image
	for _, item := range asSlice(v) {
		switch t := item.(type) {
		case string:
			if t != "" {
				out = append(out, models.Image{Src: t, Alt: title})
			}
		default:
			m := asMap(item)
			if m == nil {
				continue
			}
			src, _ := m["src"].(string)
			if src == "" {
				src, _ = m["url"].(string)
			}
			if src == "" {
				continue
			}
			alt, _ := m["alt"].(string)
			if alt == "" {
				alt = title
			}
			out = append(out, models.Image{Src: src, Alt: alt})
		}
	}
	return out
}

// names extracts the name field from a list of {id, name} objects
// (WooCommerce categories and tags).
func names(v any) []string {
	var out []string
	for _, item := range asSlice(v) {
		if m := asMap(item); m != nil {
			if name, ok := m["name"].(string); ok && name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func strList(v any) []string {
	var out []string
	for _, item := range asSlice(v) {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// GuessSource infers the backend from the id shape: a 24-hex-char ObjectID
// means MongoDB, anything else is treated as a WooCommerce numeric id.
func GuessSource(id string) models.SourceID {
	if _, err := primitive.ObjectIDFromHex(id); err == nil {
		return models.SourceMongoDB
	}
	return models.SourceWooCommerce
}
