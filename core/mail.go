package core

import (
	"bytes"
	"context"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

var ErrTemplateNotFound = errors.New("email template not found")

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: {tmplCacheEntry}}

	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can deliver an email.
	EmailService interface {
		// SendMessage delivers msg synchronously; msg must be rendered beforehand.
		SendMessage(ctx context.Context, msg *EmailMessage) error
	}

	// EmailTemplates holds the parsed `<name>.txt` and `<name>.gohtml` email templates.
	// Files starting with "_" are base layouts shared by every template of the same ext.
	EmailTemplates struct {
		cache tmplCache
		ctx   ContextData
	}
)

// ParseEmailTemplates parses every template found in dir of fsys.
func ParseEmailTemplates(fsys fs.FS, dir string, conf *Config) (*EmailTemplates, error) {
	fps, err := fs.Glob(fsys, path.Join(dir, "*"))
	if err != nil {
		return nil, errors.Wrap(err, "listing email templates")
	}

	cache := make(tmplCache)
	strict := conf.Debug || conf.TestMode
	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		entry, ok := cache[name]
		if !ok {
			entry = make(tmplCacheEntry)
			cache[name] = entry
		}

		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFS(fsys, path.Join(dir, "_base.txt"), fp)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fname)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		} else {
			tmpl, err := htmltmpl.ParseFS(fsys, path.Join(dir, "_base.gohtml"), fp)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fname)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		}
	}

	return &EmailTemplates{
		cache: cache,
		ctx:   ContextData{AppName: conf.AppName, FrontendBaseURL: conf.FrontendBaseURL},
	}, nil
}

func (t *EmailTemplates) Has(name string) bool {
	_, ok := t.cache[name]
	return ok
}

// Render fills the message's text and html contents from its template (or BodyStr).
func (t *EmailTemplates) Render(m *EmailMessage) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" {
		return nil
	}

	entry, ok := t.cache[m.TemplateName]
	if !ok {
		return errors.Wrap(ErrTemplateNotFound, m.TemplateName)
	}
	data := t.ctx
	data.Data = m.TemplateData

	if m.BodyStr == "" {
		if tmpl, ok := entry[".txt"].(*texttmpl.Template); ok {
			var buff bytes.Buffer
			if err := tmpl.Execute(&buff, data); err != nil {
				return errors.Wrap(err, "rendering text content")
			}
			m.TextContent = strings.TrimSpace(buff.String())
		}
	}
	if tmpl, ok := entry[".gohtml"].(*htmltmpl.Template); ok {
		var buff bytes.Buffer
		if err := tmpl.Execute(&buff, data); err != nil {
			return errors.Wrap(err, "rendering html content")
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To)+len(m.Cc)+len(m.Bcc) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
