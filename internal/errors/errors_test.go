package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/retree/pkg/ident"
	"github.com/vango-dev/retree/pkg/recon"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "runtime error",
			code:    "E001",
			wantMsg: "Declaration outside a frame",
			wantCat: CategoryRuntime,
		},
		{
			name:    "config error",
			code:    "E120",
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "cli error",
			code:    "E141",
			wantMsg: "Inspector failed",
			wantCat: CategoryCLI,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "frames must be positive, got %d", -1)
	if err.Message != "frames must be positive, got -1" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want %q", err.Error(), err.Message)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := New("E120").Wrap(cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is does not see the wrapped cause")
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Error() = %q, want the cause included", err.Error())
	}
}

func TestFromError(t *testing.T) {
	tree := recon.New[struct{}]()
	tree.Add(ident.NewKey("row"))
	misuse := tree.Err()

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"recon misuse", misuse, "E001"},
		{"wrapped sentinel", fmt.Errorf("frame 3: %w", recon.ErrAlreadyNested), "E006"},
		{"plain error", stderrors.New("boom"), "E142"},
		{"diagnostic passes through", New("E122"), "E122"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := FromError(tt.err, "E142")
			if d.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", d.Code, tt.wantCode)
			}
		})
	}

	d := FromError(misuse, "E142")
	if !strings.Contains(d.Detail, `"row"`) {
		t.Errorf("Detail = %q, want the node label", d.Detail)
	}
	if !stderrors.Is(d, recon.ErrNotDeclaring) {
		t.Error("diagnostic does not unwrap to the recon sentinel")
	}

	if FromError(nil, "E142") != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E004").
		WithSuggestion("declare first").
		WithExample("tree.Declare(k)\ntree.Place(k)").
		Wrap(stderrors.New("cause"))
	out := err.Format()

	for _, want := range []string{
		"ERROR E004: Key not declared this frame",
		"Place can only attach",
		"Cause: cause",
		"Hint: declare first",
		"    tree.Place(k)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompactAndJSON(t *testing.T) {
	err := New("E122")
	if got := err.FormatCompact(); got != "E122: Invalid port" {
		t.Errorf("FormatCompact = %q", got)
	}
	js := err.FormatJSON()
	if !strings.HasPrefix(js, `{"code":"E122","category":"config"`) {
		t.Errorf("FormatJSON = %s", js)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, New("E001"))
	if !strings.Contains(buf.String(), "E001") {
		t.Errorf("PrintError output = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "plain") {
		t.Errorf("PrintError output = %q", buf.String())
	}
}

func TestRegistry(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template %+v", code, tmpl)
		}
	}
	Register("E199", ErrorTemplate{Category: CategoryCLI, Message: "custom"})
	if New("E199").Message != "custom" {
		t.Error("registered template not used")
	}
}
