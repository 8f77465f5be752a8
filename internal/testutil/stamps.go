package testutil

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// stampText matches the text operator of a page-number stamp form.
var stampText = regexp.MustCompile(`\((\d+)\) Tj`)

// StampedNumbers returns the number drawn by the page-number stamp on each
// page of doc, keyed by physical page. Pages without a stamp are absent.
func StampedNumbers(t testing.TB, doc []byte) map[int]string {
	t.Helper()
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadAndValidate(bytes.NewReader(doc), conf)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}

	stamps := make(map[int]string)
	for page := 1; page <= ctx.PageCount; page++ {
		d, _, inherited, err := ctx.PageDict(page, false)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		var resources []types.Dict
		if o, ok := d.Find("Resources"); ok {
			if rd, err := ctx.DereferenceDict(o); err == nil && rd != nil {
				resources = append(resources, rd)
			}
		}
		if inherited != nil && inherited.Resources != nil {
			resources = append(resources, inherited.Resources)
		}
		if n := stampedNumber(ctx, resources); n != "" {
			stamps[page] = n
		}
	}
	return stamps
}

func stampedNumber(ctx *model.Context, resources []types.Dict) string {
	for _, res := range resources {
		o, ok := res.Find("XObject")
		if !ok {
			continue
		}
		forms, err := ctx.DereferenceDict(o)
		if err != nil || forms == nil {
			continue
		}
		for _, ref := range forms {
			sd, _, err := ctx.DereferenceStreamDict(ref)
			if err != nil || sd == nil {
				continue
			}
			if err := sd.Decode(); err != nil {
				continue
			}
			if m := stampText.FindSubmatch(sd.Content); m != nil {
				return string(m[1])
			}
		}
	}
	return ""
}
