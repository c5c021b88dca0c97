package layouts

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
)

//go:embed html/*.html
var files embed.FS

var views = template.Must(template.New("views").Funcs(funcs).ParseFS(files, "html/*.html"))

// View is the value every template executes against. Content templates
// read their own data from .Data and the chrome from .Layout.
type View struct {
	Title  string
	Layout Layout
	Data   any
	Body   template.HTML
}

// Page renders the named content template inside the full site layout.
func Page(title, name string, data any) templ.Component {
	return wrapped("base", title, name, data)
}

// Print renders the named content template inside the bare print layout.
func Print(title, name string, data any) templ.Component {
	return wrapped("print_base", title, name, data)
}

// Fragment renders one named template on its own for HTMX swaps.
func Fragment(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return execute(w, name, View{Layout: FromContext(ctx), Data: data})
	})
}

// ErrorPage renders the full error page for a status code.
func ErrorPage(code int, message string) templ.Component {
	return Page(strconv.Itoa(code)+" "+statusTitle(code), "error", ErrorData{Code: code, Message: message})
}

// Flash renders the inline notification that HTMX error responses are
// retargeted into.
func Flash(kind, message string) templ.Component {
	return Fragment("flash", FlashData{Kind: kind, Message: message})
}

// ErrorData feeds the error page.
type ErrorData struct {
	Code    int
	Message string
}

// FlashData feeds the notification banner.
type FlashData struct {
	Kind    string
	Message string
}

func wrapped(layout, title, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		v := View{Title: title, Layout: FromContext(ctx), Data: data}

		var body bytes.Buffer
		if err := execute(&body, name, v); err != nil {
			return err
		}
		v.Body = template.HTML(body.String())
		return execute(w, layout, v)
	})
}

func execute(w io.Writer, name string, v View) error {
	if views.Lookup(name) == nil {
		return fmt.Errorf("layouts: unknown template %q", name)
	}
	if err := views.ExecuteTemplate(w, name, v); err != nil {
		return fmt.Errorf("layouts: rendering %q: %w", name, err)
	}
	return nil
}

func statusTitle(code int) string {
	switch code {
	case 400:
		return "Bad Request"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 409:
		return "Conflict"
	case 422:
		return "Invalid Input"
	case 429:
		return "Too Many Requests"
	case 502:
		return "Backend Unavailable"
	}
	return "Error"
}

var funcs = template.FuncMap{
	"projectURL": projectURL,
	"withQuery":  withQuery,
	"dict":       dict,
	"join":       strings.Join,
	"pathEscape": url.PathEscape,
	"shootDay": func(n *int) string {
		if n == nil {
			return ""
		}
		return strconv.Itoa(*n)
	},
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2 Jan 2006 15:04")
	},
	"formatTimePtr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2 Jan 2006 15:04")
	},
	"shortDate": func(t time.Time) string { return t.Format("2") },
	"longDate": func(date string) string {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return date
		}
		return t.Format("Mon 2 Jan 2006")
	},
	"style": func(bg, fg string) template.CSS {
		if bg == "" {
			return ""
		}
		return template.CSS("background-color:" + cssColor(bg) + ";color:" + cssColor(fg))
	},
	"swatch": func(c string) template.CSS {
		return template.CSS("background-color:" + cssColor(c))
	},
}

// projectURL builds /projects/<id><suffix>.
func projectURL(id, suffix string) string {
	return "/projects/" + url.PathEscape(id) + suffix
}

// dict builds a map from alternating keys and values so a sub-template
// can take more than one argument.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}

// withQuery appends an already-encoded query to u.
func withQuery(u, query string) string {
	if query == "" {
		return u
	}
	if strings.Contains(u, "?") {
		return u + "&" + query
	}
	return u + "?" + query
}

// cssColor passes only hex colours through; anything else would let
// backend data inject CSS.
func cssColor(c string) string {
	h := strings.TrimPrefix(strings.TrimSpace(c), "#")
	if len(h) != 3 && len(h) != 6 {
		return "transparent"
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "transparent"
		}
	}
	return "#" + h
}
