// Package dataset reads marketplace listing exports.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

// Column headers of the listings export
const (
	ColumnVendor      = "Vendor"
	ColumnCategory    = "Category"
	ColumnItem        = "Item"
	ColumnDescription = "Item Description"
	ColumnPrice       = "Price"
	ColumnOrigin      = "Origin"
	ColumnDestination = "Destination"
	ColumnRating      = "Rating"
	ColumnRemarks     = "Remarks"

	// legacyDescription is the truncated header some exports use
	legacyDescription = "Item Descr"
)

var requiredColumns = []string{ColumnVendor, ColumnCategory, ColumnOrigin, ColumnPrice, ColumnDescription}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadFile reads a listings CSV from disk
func LoadFile(path string) ([]domain.Listing, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found", domain.ErrDatasetUnavailable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetUnavailable, err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a listings CSV. Input is read as UTF-8 (a leading BOM is
// dropped) and falls back to Latin-1 when it is not valid UTF-8. Header
// names are trimmed and the legacy "Item Descr" header is accepted.
func Parse(r io.Reader) ([]domain.Listing, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetUnavailable, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		log.Printf("[DATASET] input is not valid UTF-8, decoding as Latin-1")
		data, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: latin-1 decode: %v", domain.ErrDatasetUnavailable, err)
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrDatasetUnavailable, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == legacyDescription {
			name = ColumnDescription
		}
		columns[name] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrDatasetUnavailable, strings.Join(missing, ", "))
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var listings []domain.Listing
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrDatasetUnavailable, line, err)
		}
		listings = append(listings, domain.Listing{
			Vendor:      field(record, ColumnVendor),
			Category:    field(record, ColumnCategory),
			Origin:      field(record, ColumnOrigin),
			Price:       field(record, ColumnPrice),
			Description: field(record, ColumnDescription),
			Item:        field(record, ColumnItem),
			Destination: field(record, ColumnDestination),
			Rating:      field(record, ColumnRating),
			Remarks:     field(record, ColumnRemarks),
		})
	}
	return listings, nil
}

// Clean keeps rows usable for training: a vendor, every feature field, and a
// price priceOK accepts. It returns the kept rows and how many were dropped.
func Clean(listings []domain.Listing, priceOK func(raw string) bool) ([]domain.Listing, int) {
	kept := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Vendor == "" || len(l.MissingFields()) > 0 {
			continue
		}
		if priceOK != nil && !priceOK(l.Price) {
			continue
		}
		kept = append(kept, l)
	}
	return kept, len(listings) - len(kept)
}
