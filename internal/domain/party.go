package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	MaxLogoBytes     = 2 * 1024 * 1024
	DefaultLogoWidth = 150
	MinLogoWidth     = 50
	MaxLogoWidth     = 300
)

// Party is either side of an invoice. Only the sender carries a logo.
type Party struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	Logo      *Logo  `json:"logo,omitempty"`
	LogoWidth int    `json:"logoWidth,omitempty"`
}

// AddressLines splits the comma-delimited address for display
func (p Party) AddressLines() []string {
	var lines []string
	for _, part := range strings.Split(p.Address, ",") {
		if part = strings.TrimSpace(part); part != "" {
			lines = append(lines, part)
		}
	}
	return lines
}

func (p Party) Clone() Party {
	out := p
	if p.Logo != nil {
		logo := p.Logo.Clone()
		out.Logo = &logo
	}
	return out
}

func (p Party) Equal(o Party) bool {
	if p.Name != o.Name || p.Address != o.Address || p.Email != o.Email || p.LogoWidth != o.LogoWidth {
		return false
	}
	if (p.Logo == nil) != (o.Logo == nil) {
		return false
	}
	return p.Logo == nil || p.Logo.Equal(*o.Logo)
}

// Logo is an inline image payload. It is stored as a data URI inside the
// invoice document.
type Logo struct {
	Data     []byte
	MIMEType string
}

// NewLogo sniffs the payload and rejects anything that is not a supported
// image or exceeds MaxLogoBytes.
func NewLogo(data []byte) (Logo, error) {
	if len(data) == 0 {
		return Logo{}, &ValidationError{Field: "from.logo", Message: "logo is empty"}
	}
	if len(data) > MaxLogoBytes {
		return Logo{}, &ValidationError{Field: "from.logo", Message: "logo must be 2MB or smaller"}
	}
	mime := http.DetectContentType(data)
	switch mime {
	case "image/png", "image/jpeg":
	default:
		return Logo{}, &ValidationError{Field: "from.logo", Message: fmt.Sprintf("unsupported logo type %s", mime)}
	}
	return Logo{Data: bytes.Clone(data), MIMEType: mime}, nil
}

// ValidateLogoWidth checks the display width in pixels
func ValidateLogoWidth(width int) error {
	if width < MinLogoWidth || width > MaxLogoWidth {
		return &ValidationError{
			Field:   "from.logoWidth",
			Message: fmt.Sprintf("logo width must be between %d and %d", MinLogoWidth, MaxLogoWidth),
		}
	}
	return nil
}

func (l Logo) Clone() Logo {
	return Logo{Data: bytes.Clone(l.Data), MIMEType: l.MIMEType}
}

func (l Logo) Equal(o Logo) bool {
	return l.MIMEType == o.MIMEType && bytes.Equal(l.Data, o.Data)
}

// DataURI renders the logo as data:<mime>;base64,<payload>
func (l Logo) DataURI() string {
	return "data:" + l.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(l.Data)
}

func ParseDataURI(uri string) (Logo, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Logo{}, fmt.Errorf("logo is not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Logo{}, fmt.Errorf("logo data URI has no payload")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Logo{}, fmt.Errorf("logo data URI must be base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Logo{}, fmt.Errorf("failed to decode logo: %w", err)
	}
	return Logo{Data: data, MIMEType: mime}, nil
}

func (l Logo) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.DataURI())
}

func (l *Logo) UnmarshalJSON(b []byte) error {
	var uri string
	if err := json.Unmarshal(b, &uri); err != nil {
		return err
	}
	parsed, err := ParseDataURI(uri)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
