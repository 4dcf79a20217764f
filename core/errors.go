package core

import "golang.org/x/xerrors"

// LoadError wraps a document open/parse/decrypt failure — spec §7's
// "document-level load failure is fatal and surfaced" error kind.
type LoadError struct {
	Op  string
	err error
}

func (e *LoadError) Error() string { return "pdftext: " + e.Op + ": " + e.err.Error() }
func (e *LoadError) Unwrap() error { return e.err }

// NewLoadError wraps err, formatted with op, as a *LoadError.
func NewLoadError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &LoadError{Op: op, err: xerrors.Errorf("%s: %w", op, err)}
}

// ErrEncryptedNoPassword is returned internally when a document is
// encrypted and the supplied (possibly empty) password does not
// authenticate it. The façade retries once with the empty password per
// spec §7 before surfacing this.
var ErrEncryptedNoPassword = xerrors.New("pdftext: document is encrypted and the password did not authenticate it")
