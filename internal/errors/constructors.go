package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *BuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Content errors

func ParseError(path string, cause error) *BuildError {
	return Wrap(cause, CategoryParse, SeverityError, "malformed post").
		WithContext("path", path)
}

func LoadError(cause error) *BuildError {
	return Wrap(cause, CategoryLoad, SeverityFatal, "content load failed")
}

func SlugCollision(slug, first, second string) *BuildError {
	return New(CategoryLoad, SeverityFatal, "duplicate slug").
		WithContext("slug", slug).
		WithContext("first", first).
		WithContext("second", second)
}

// Build pipeline errors

func RenderFailed(page string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityFatal, "page render failed").
		WithContext("page", page)
}

func WriteFailed(path string, cause error) *BuildError {
	return Wrap(cause, CategoryWrite, SeverityFatal, "output write failed").
		WithContext("path", path)
}
