package discovery

import "strings"

// Language identifies the source language a file belongs to, used to pick
// a parser and to honor include/exclude language filters in config.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCpp        Language = "cpp"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPHP        Language = "php"
	LangCSharp     Language = "csharp"
	LangZig        Language = "zig"
	LangUnknown    Language = ""
)

// languageExtensions mirrors the language->extension table a codebase
// walker needs to route files to a parser. Non-code families (markdown,
// yaml, config, documentation, container) are intentionally omitted here:
// discovery only needs to recognize source code, not catalog every file
// family the original tool classified for documentation purposes.
var languageExtensions = map[Language][]string{
	LangPython:     {".py"},
	LangJavaScript: {".js", ".jsx", ".mjs", ".cjs"},
	LangTypeScript: {".ts", ".tsx"},
	LangJava:       {".java"},
	LangC:          {".c", ".h"},
	LangCpp:        {".cpp", ".hpp", ".cc", ".hh", ".cxx", ".hxx"},
	LangGo:         {".go"},
	LangRust:       {".rs"},
	LangPHP:        {".php"},
	LangCSharp:     {".cs"},
	LangZig:        {".zig"},
}

var extensionToLanguage = buildExtensionIndex()

func buildExtensionIndex() map[string]Language {
	idx := make(map[string]Language)
	for lang, exts := range languageExtensions {
		for _, ext := range exts {
			idx[ext] = lang
		}
	}
	return idx
}

// LanguageFromExtension returns the Language associated with a file
// extension (case-insensitive, leading dot optional), or LangUnknown.
func LanguageFromExtension(ext string) Language {
	if ext == "" {
		return LangUnknown
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return extensionToLanguage[strings.ToLower(ext)]
}

// LanguageFromPath returns the Language for a file path based on its
// extension.
func LanguageFromPath(path string) Language {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return LangUnknown
	}
	return LanguageFromExtension(path[idx:])
}

// skipExtensions are binary/media/archive/system extensions that are never
// worth reading as source text, ported from the original tool's
// SKIP_EXTENSIONS table.
var skipExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".tiff": true, ".tif": true, ".webp": true, ".heic": true, ".heif": true,
	".ico": true, ".icns": true, ".psd": true, ".ai": true, ".eps": true,

	".mp3": true, ".wav": true, ".flac": true, ".aac": true, ".ogg": true,
	".m4a": true, ".wma": true, ".aiff": true,

	".mp4": true, ".mkv": true, ".mov": true, ".avi": true, ".wmv": true,
	".flv": true, ".webm": true, ".mpeg": true, ".mpg": true, ".3gp": true,

	".ttf": true, ".otf": true, ".woff": true, ".woff2": true, ".eot": true,

	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".rar": true, ".7z": true, ".iso": true, ".dmg": true,

	".db": true, ".sqlite": true, ".sqlite3": true, ".mdb": true,
	".accdb": true, ".dbf": true, ".frm": true, ".myd": true, ".myi": true,
	".ndf": true, ".ldf": true,

	".sys": true, ".dll": true, ".exe": true, ".bin": true, ".msi": true,
	".obj": true, ".o": true, ".so": true, ".dylib": true, ".class": true,
	".lock": true, ".tmp": true, ".log": true, ".bak": true, ".swp": true,
	".swo": true,

	".stl": true, ".fbx": true, ".blend": true, ".dae": true, ".3ds": true,

	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true, ".odt": true, ".ods": true, ".odp": true,
}

// ShouldSkip reports whether a path's extension marks it as binary/media
// content that should never be read as source text.
func ShouldSkip(path string) bool {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return false
	}
	return skipExtensions[strings.ToLower(path[idx:])]
}

// SupportedLanguages returns every Language discovery can route to a
// parser, for config validation and CLI help text.
func SupportedLanguages() []Language {
	langs := make([]Language, 0, len(languageExtensions))
	for lang := range languageExtensions {
		langs = append(langs, lang)
	}
	return langs
}
