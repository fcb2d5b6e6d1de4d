package render

import (
	"fmt"
	"io"
)

// PageData describes a preview document wrapped around a resolved tree.
type PageData struct {
	// Body is the resolved tree rendered inside <body>.
	Body any

	// Title is the page title
	Title string

	// Meta contains name/content meta tags for the page
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	// Styles contains inline CSS styles
	Styles []string

	// Lang is the language attribute for the html element
	// Defaults to "en" if not specified
	Lang string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name    string
	Content string
}

// RenderPage renders a complete HTML document around page.Body.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if err := r.renderOpen(w, page); err != nil {
		return err
	}
	if err := r.renderPayload(w, page.Body, 0); err != nil {
		return err
	}
	return r.renderClose(w)
}

func (r *Renderer) renderOpen(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	_, err := io.WriteString(w, "<body>\n")
	return err
}

func (r *Renderer) renderClose(w io.Writer) error {
	_, err := io.WriteString(w, "\n</body>\n</html>\n")
	return err
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<head>\n"+`  <meta charset="utf-8">`+"\n"); err != nil {
		return err
	}

	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}

	for _, meta := range page.Meta {
		if _, err := fmt.Fprintf(w, `  <meta name="%s" content="%s">`+"\n",
			escapeAttr(meta.Name), escapeAttr(meta.Content)); err != nil {
			return err
		}
	}

	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(w, `  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(href)); err != nil {
			return err
		}
	}

	for _, style := range page.Styles {
		if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", style); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</head>\n")
	return err
}
