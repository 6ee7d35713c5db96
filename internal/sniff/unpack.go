package sniff

import (
	"errors"
	"regexp"
	"time"

	"github.com/dop251/goja"
)

var (
	packerHeadRegexp = regexp.MustCompile(`eval\s*\(\s*function\s*\(\s*p\s*,\s*a\s*,\s*c\s*,\s*k\s*,\s*e\s*,\s*([dr])\s*\)`)
	scriptRegexp     = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
)

const captureName = "__playparseCapture"

const unpackPreludeJS = `
var __playparseOut = [];
var ` + captureName + ` = function(s){ __playparseOut.push(String(s)); };
var globalThis = this;
if (typeof window === 'undefined') { var window = this; }
if (typeof document === 'undefined') {
	var document = { write: function(){}, getElementById: function(){ return null; }, createElement: function(){ return {}; } };
}
if (typeof navigator === 'undefined') { var navigator = { userAgent: '' }; }
if (typeof location === 'undefined') { var location = { href: '' }; }
`

// IsPacked reports whether script contains a Dean Edwards style packed payload.
func IsPacked(script string) bool {
	return packerHeadRegexp.MatchString(script)
}

// Unpack evaluates every packed payload in script and returns the source each one
// would have handed to eval. Scripts that fail after a payload ran still return
// the payloads captured so far. Evaluation is interrupted after timeout.
func Unpack(script string, timeout time.Duration) ([]string, error) {
	if !IsPacked(script) {
		return nil, nil
	}
	src := packerHeadRegexp.ReplaceAllString(script, captureName+"(function(p,a,c,k,e,$1)")

	vm := goja.New()
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			vm.Interrupt("unpack timeout")
		})
		defer timer.Stop()
	}
	if _, err := vm.RunString(unpackPreludeJS); err != nil {
		return nil, err
	}
	_, runErr := vm.RunString(src)

	var out []string
	if err := vm.ExportTo(vm.Get("__playparseOut"), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		if runErr != nil {
			return nil, runErr
		}
		return nil, errors.New("packed payload produced no output")
	}
	return out, nil
}

// Scripts returns the inline script bodies of an HTML document. A body without
// script tags is returned whole so plain JS responses are still considered.
func Scripts(body string) []string {
	matches := scriptRegexp.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return []string{body}
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
