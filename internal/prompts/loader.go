package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed *.md
var embedded embed.FS

// Template names shipped with the binary.
const (
	TemplateWorker       = "worker"
	TemplateVerifier     = "verifier"
	TemplateVerification = "verification"
)

var placeholderPattern = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// Template is a markdown prompt with {{name}} placeholders.
type Template struct {
	Name         string
	Content      string
	Placeholders []string
}

// Loader holds the templates found in a file system, keyed by file name
// without the .md extension.
type Loader struct {
	templates map[string]Template
}

var (
	defaultOnce   sync.Once
	defaultLoader *Loader
	defaultErr    error
)

// Default returns the loader over the embedded templates.
func Default() (*Loader, error) {
	defaultOnce.Do(func() {
		defaultLoader, defaultErr = NewLoader(embedded)
	})
	return defaultLoader, defaultErr
}

// NewLoader reads every top-level *.md file of fsys.
func NewLoader(fsys fs.FS) (*Loader, error) {
	files, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("list prompt templates: %w", err)
	}
	l := &Loader{templates: make(map[string]Template, len(files))}
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read prompt template %s: %w", file, err)
		}
		content := strings.TrimRight(string(data), "\n")
		var names []string
		for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
			if !slices.Contains(names, m[1]) {
				names = append(names, m[1])
			}
		}
		name := strings.TrimSuffix(path.Base(file), ".md")
		l.templates[name] = Template{Name: name, Content: content, Placeholders: names}
	}
	return l, nil
}

// Template returns the named template.
func (l *Loader) Template(name string) (Template, error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("prompt template %q not found", name)
	}
	return tmpl, nil
}

// Render fills every placeholder of the named template in a single pass, so
// placeholder text inside a value is left as is. A placeholder without a
// value is an error.
func (l *Loader) Render(name string, values map[string]string) (string, error) {
	tmpl, err := l.Template(name)
	if err != nil {
		return "", err
	}
	if len(tmpl.Placeholders) == 0 {
		return tmpl.Content, nil
	}
	pairs := make([]string, 0, 2*len(tmpl.Placeholders))
	for _, key := range tmpl.Placeholders {
		value, ok := values[key]
		if !ok {
			return "", fmt.Errorf("prompt template %q: no value for {{%s}}", name, key)
		}
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl.Content), nil
}

// Names lists the loaded templates in sorted order.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
