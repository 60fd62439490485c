package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, result *UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatCatalog(w io.Writer, entries []CatalogEntry) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats an upload result as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, result *UploadResult) error {
	if f.Quiet {
		return nil
	}
	verb := "Uploaded"
	if result.Replaced {
		verb = "Replaced"
	}
	_, _ = fmt.Fprintf(w, "%s: %s -> %s (owner %s)\n", verb, result.LocalPath, result.Name, result.Owner)
	if result.URL != "" {
		_, _ = fmt.Fprintf(w, "  URL: %s\n", result.URL)
	}
	return nil
}

// FormatDownload formats a download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.RemoteName, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.RemoteName, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Name, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.Name)
		}
	}
	return nil
}

// FormatCatalog formats catalog entries as a two-column table.
func (f *HumanFormatter) FormatCatalog(w io.Writer, entries []CatalogEntry) error {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No objects found")
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range entries {
		if len(entries[i].Name) > maxNameLen {
			maxNameLen = len(entries[i].Name)
		}
	}
	if maxNameLen > 60 {
		maxNameLen = 60
	}

	_, _ = fmt.Fprintf(w, "%-*s  %s\n", maxNameLen, "NAME", "OWNER")
	_, _ = fmt.Fprintf(w, "%s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 10))

	for i := range entries {
		name := entries[i].Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-*s  %s\n", maxNameLen, name, entries[i].Owner)
	}

	_, _ = fmt.Fprintf(w, "\n%d object(s)\n", len(entries))
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats profiles as human-readable text. The
// default profile is marked with an asterisk.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %s\t%s", marker, p.Name, p.Endpoint)
		if p.Owner != "" {
			_, _ = fmt.Fprintf(w, "\t(owner %s)", p.Owner)
		}
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s\n", profile.Name)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	if profile.Owner != "" {
		_, _ = fmt.Fprintf(w, "Owner:    %s\n", profile.Owner)
	}
	if isDefault {
		_, _ = fmt.Fprintln(w, "Default:  yes")
	}
	return nil
}

// JSONFormatter outputs machine-readable JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatUpload(w io.Writer, result *UploadResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type deleteJSON struct {
		Name    string `json:"name"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}
	out := make([]deleteJSON, 0, len(results))
	for i := range results {
		d := deleteJSON{Name: results[i].Name, Deleted: results[i].Deleted}
		if results[i].Err != nil {
			d.Error = results[i].Err.Error()
		}
		out = append(out, d)
	}
	return writeJSON(w, out)
}

func (f *JSONFormatter) FormatCatalog(w io.Writer, entries []CatalogEntry) error {
	if entries == nil {
		entries = []CatalogEntry{}
	}
	return writeJSON(w, entries)
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, map[string]string{"error": err.Error()})
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	type profileJSON struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Owner    string `json:"owner,omitempty"`
		Default  bool   `json:"default"`
	}
	out := make([]profileJSON, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		out = append(out, profileJSON{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Owner:    p.Owner,
			Default:  p.Name == defaultName,
		})
	}
	return writeJSON(w, out)
}

func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	return writeJSON(w, map[string]any{
		"name":     profile.Name,
		"endpoint": profile.Endpoint,
		"owner":    profile.Owner,
		"default":  isDefault,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
