package ports

// FileSystemPort is the file I/O the converter performs on the output tree.
type FileSystemPort interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	MkdirAll(path string) error
	// CopyFile copies src to dst keeping its mode and modification time.
	CopyFile(src string, dst string) error
	// RemoveContents empties a directory without removing it. Entries that
	// are neither regular files nor directories are refused.
	RemoveContents(dir string) error
}
