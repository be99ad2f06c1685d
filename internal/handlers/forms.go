package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cashwise/backend/internal/attachments"
	"github.com/cashwise/backend/internal/ledger"
	"github.com/shopspring/decimal"
)

const maxUploadMemory = 32 << 20

// parseForm accepts multipart and url-encoded bodies alike.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxUploadMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// formFiles returns the uploads sent under field or field[].
func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := append([]*multipart.FileHeader{}, r.MultipartForm.File[field]...)
	return append(files, r.MultipartForm.File[field+"[]"]...)
}

// saveFiles stores every upload of field and returns their URLs in order.
// On failure the files already stored by this call are removed.
func saveFiles(ctx context.Context, store attachments.Store, r *http.Request, field string) ([]string, error) {
	headers := formFiles(r, field)
	urls := make([]string, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			discardFiles(ctx, store, urls)
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		u, err := store.Save(ctx, fh.Filename, f)
		f.Close()
		if err != nil {
			discardFiles(ctx, store, urls)
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// discardFiles removes uploads whose request was rejected. It outlives the
// request context so a timed out request still cleans up.
func discardFiles(ctx context.Context, store attachments.Store, urls ...[]string) {
	ctx = context.WithoutCancel(ctx)
	for _, group := range urls {
		for _, u := range group {
			if err := store.Delete(ctx, u); err != nil {
				log.Printf("[HTTP] Failed to discard attachment %s: %v", u, err)
			}
		}
	}
}

// queryList flattens repeated key and key[] parameters.
func queryList(q url.Values, key string) []string {
	return append(append([]string{}, q[key]...), q[key+"[]"]...)
}

func parseAmountRange(q url.Values) (ledger.AmountRange, error) {
	var r ledger.AmountRange
	var err error
	if r.Min, err = optionalDecimal(q.Get("minAmount")); err != nil {
		return r, errors.New("minAmount must be a number!")
	}
	if r.Max, err = optionalDecimal(q.Get("maxAmount")); err != nil {
		return r, errors.New("maxAmount must be a number!")
	}
	return r, nil
}

func optionalDecimal(raw string) (decimal.Decimal, error) {
	var d decimal.Decimal
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return d, nil
	}
	return decimal.NewFromString(raw)
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("limit must be a non-negative integer!")
	}
	return n, nil
}
