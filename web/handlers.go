package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/xamlai"
)

const (
	modeText = "text"
	modeFile = "file"
)

// banner kinds map to CSS classes in the template.
const (
	bannerSuccess = "success"
	bannerWarning = "warning"
	bannerInfo    = "info"
	bannerError   = "error"
)

// FailedNodesHeader carries the number of strings that kept their original
// text in a translated download.
const FailedNodesHeader = "X-Xamlai-Failed-Nodes"

type banner struct {
	Kind    string
	Message string
}

type pageData struct {
	Title      string
	Languages  []string
	Lang       string
	LangCode   string
	Mode       string
	Text       string
	Banner     *banner
	Translated string
	Dir        string
	Version    string
}

func newPage(lang, mode string) *pageData {
	return &pageData{
		Title:     "English Text & XAML Translator",
		Languages: xamlai.LanguageNames(),
		Lang:      lang,
		Mode:      mode,
		Dir:       "ltr",
		Version:   xamlai.FullVersion(),
	}
}

// selectLanguage resolves the submitted language and stores its canonical name.
func (p *pageData) selectLanguage() (xamlai.Language, bool) {
	lang, ok := xamlai.LookupLanguage(p.Lang)
	if ok {
		p.Lang = lang.Name
		p.LangCode = lang.Code
	}
	return lang, ok
}

func (s *Server) render(w http.ResponseWriter, status int, page *pageData) {
	var buf strings.Builder
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", page); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, buf.String())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, newPage(r.URL.Query().Get("lang"), modeText))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleTranslateText(w http.ResponseWriter, r *http.Request) {
	page := newPage(r.FormValue("lang"), modeText)
	page.Text = r.FormValue("text")

	lang, ok := page.selectLanguage()
	if !ok {
		page.Banner = &banner{bannerError, "Please select a supported target language."}
		s.render(w, http.StatusBadRequest, page)
		return
	}

	if strings.TrimSpace(page.Text) == "" {
		page.Banner = &banner{bannerWarning, "Please enter some text to translate."}
		s.render(w, http.StatusOK, page)
		return
	}

	out := s.translator(lang.Name).TranslateText(r.Context(), page.Text)
	if out.Failed() {
		w.Header().Set(FailedNodesHeader, "1")
		page.Banner = &banner{bannerWarning, fmt.Sprintf("Translation to %s failed; showing the original text.", lang.Name)}
		page.Translated = out.Text
		s.render(w, http.StatusOK, page)
		return
	}

	page.Banner = &banner{bannerSuccess, fmt.Sprintf("Translated Text in %s:", lang.Name)}
	page.Translated = out.Text
	page.Dir = lang.Direction()
	s.render(w, http.StatusOK, page)
}

func (s *Server) handleTranslateXAML(w http.ResponseWriter, r *http.Request) {
	limit := s.opts.MaxUploadBytes
	tooLargeBanner := &banner{bannerError, fmt.Sprintf("The uploaded file is larger than %d bytes.", limit)}

	if r.ContentLength > limit {
		page := newPage("", modeFile)
		page.Banner = tooLargeBanner
		s.render(w, http.StatusRequestEntityTooLarge, page)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		page := newPage("", modeFile)

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			page.Banner = tooLargeBanner
			s.render(w, http.StatusRequestEntityTooLarge, page)
			return
		}
		page.Banner = &banner{bannerError, "Please upload a XAML file."}
		s.render(w, http.StatusBadRequest, page)
		return
	}

	page := newPage(r.FormValue("lang"), modeFile)

	lang, ok := page.selectLanguage()
	if !ok {
		page.Banner = &banner{bannerError, "Please select a supported target language."}
		s.render(w, http.StatusBadRequest, page)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		page.Banner = &banner{bannerError, "Please upload a XAML file."}
		s.render(w, http.StatusBadRequest, page)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		page.Banner = &banner{bannerError, "Failed to read the uploaded file."}
		s.render(w, http.StatusBadRequest, page)
		return
	}

	result, err := s.translator(lang.Name).Rewrite(r.Context(), content)

	var procErr *xamlai.ProcessorError
	switch {
	case errors.Is(err, xamlai.ErrNoContent):
		page.Banner = &banner{bannerInfo, "No translatable content found in the XAML file."}
		s.render(w, http.StatusOK, page)
		return
	case errors.As(err, &procErr):
		page.Banner = &banner{bannerError, "The uploaded file is not valid XAML: " + procErr.Error()}
		s.render(w, http.StatusBadRequest, page)
		return
	case err != nil:
		s.logger.Error().Err(err).Str("lang", lang.Name).Msg("XAML translation aborted")
		page.Banner = &banner{bannerError, "Translation was interrupted."}
		s.render(w, http.StatusInternalServerError, page)
		return
	}

	filename := lang.Name + "_translated.xaml"
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set(FailedNodesHeader, strconv.Itoa(result.FailedCount))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Content)
}
