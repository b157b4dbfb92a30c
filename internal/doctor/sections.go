package doctor

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"os/exec"
	"text/tabwriter"
	"time"

	"github.com/majorcontext/sluice/internal/config"
	"github.com/majorcontext/sluice/internal/secrets"
	"github.com/majorcontext/sluice/internal/ui"
)

// certExpiryWarning is how close to expiry a certificate gets flagged.
const certExpiryWarning = 14 * 24 * time.Hour

// ConfigSection shows the effective configuration.
type ConfigSection struct {
	Config *config.Config
	Path   string
}

func (s *ConfigSection) Name() string { return "Configuration" }

func (s *ConfigSection) Print(w io.Writer) error {
	path := s.Path
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err != nil {
		path += " " + ui.Dim("(not found, using defaults)")
	}

	c := s.Config
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", path)
	fmt.Fprintf(tw, "Model:\t%s\n", c.ModelID)
	fmt.Fprintf(tw, "Generation:\tmaxTokenCount=%d temperature=%g topP=%g\n",
		c.Generation.MaxTokenCount, c.Generation.Temperature, c.Generation.TopP)
	if c.Audit.Enabled {
		fmt.Fprintf(tw, "History:\t%s\n", c.Audit.Path)
	} else {
		fmt.Fprintln(tw, "History:\tdisabled")
	}
	return tw.Flush()
}

// TaskRoleSection reports which default-chain inputs are present. Values
// are never printed.
type TaskRoleSection struct {
	Config *config.Config
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (s *TaskRoleSection) Name() string { return "Task Role" }

func (s *TaskRoleSection) Print(w io.Writer) error {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Region:\t%s\n", s.Config.TaskRole.Region)

	switch {
	case getenv("AWS_CONTAINER_CREDENTIALS_RELATIVE_URI") != "":
		fmt.Fprintf(tw, "Chain:\t%s ECS container credentials endpoint\n", ui.OKTag())
	case getenv("AWS_CONTAINER_CREDENTIALS_FULL_URI") != "":
		fmt.Fprintf(tw, "Chain:\t%s container credentials (full URI)\n", ui.OKTag())
	case getenv("AWS_ACCESS_KEY_ID") != "":
		fmt.Fprintf(tw, "Chain:\t%s environment access keys\n", ui.WarnTag())
	case getenv("AWS_PROFILE") != "":
		fmt.Fprintf(tw, "Chain:\t%s shared config profile %s\n", ui.OKTag(), getenv("AWS_PROFILE"))
	default:
		fmt.Fprintf(tw, "Chain:\t%s not on ECS; default profile, SSO or IMDS will be tried\n", ui.Dim("-"))
	}
	return tw.Flush()
}

// RolesAnywhereSection validates the Roles Anywhere settings, locates the
// signing helper and inspects the certificate and key.
type RolesAnywhereSection struct {
	Config *config.Config
	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *RolesAnywhereSection) Name() string { return "Roles Anywhere" }

func (s *RolesAnywhereSection) Print(w io.Writer) error {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	ra := s.Config.RolesAnywhere
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Region:\t%s\n", ra.Region)

	if err := ra.Validate(); err != nil {
		fmt.Fprintf(tw, "Config:\t%s invalid\n", ui.FailTag())
		for _, e := range unjoin(err) {
			fmt.Fprintf(tw, "\t  %s\n", e)
		}
	} else {
		fmt.Fprintf(tw, "Config:\t%s profile, role and trust anchor ARNs valid\n", ui.OKTag())
	}

	if path, err := lookPath(ra.Helper()); err != nil {
		fmt.Fprintf(tw, "Helper:\t%s %s not found\n", ui.FailTag(), ra.Helper())
	} else {
		fmt.Fprintf(tw, "Helper:\t%s %s\n", ui.OKTag(), path)
	}

	certOK := false
	switch {
	case ra.Certificate == "":
		fmt.Fprintf(tw, "Certificate:\t%s not set\n", ui.FailTag())
	case secrets.IsReference(ra.Certificate):
		fmt.Fprintf(tw, "Certificate:\t%s resolved at run time\n", ra.Certificate)
	default:
		cert, err := LoadCertificate(ra.Certificate)
		if err != nil {
			fmt.Fprintf(tw, "Certificate:\t%s %v\n", ui.FailTag(), err)
			break
		}
		certOK = true
		fmt.Fprintf(tw, "Certificate:\t%s %s\n", certTag(cert, now()), cert.Subject)
		fmt.Fprintf(tw, "  Issuer:\t%s\n", cert.Issuer)
		fmt.Fprintf(tw, "  Expires:\t%s\n", cert.NotAfter.Format(time.RFC3339))
	}

	switch {
	case ra.PrivateKey == "":
		fmt.Fprintf(tw, "Private key:\t%s not set\n", ui.FailTag())
	case secrets.IsReference(ra.PrivateKey):
		fmt.Fprintf(tw, "Private key:\t%s resolved at run time\n", ra.PrivateKey)
	case !certOK:
		if _, err := os.Stat(ra.PrivateKey); err != nil {
			fmt.Fprintf(tw, "Private key:\t%s %v\n", ui.FailTag(), err)
		} else {
			fmt.Fprintf(tw, "Private key:\t%s present, not checked against certificate\n", ui.WarnTag())
		}
	default:
		if _, err := tls.LoadX509KeyPair(ra.Certificate, ra.PrivateKey); err != nil {
			fmt.Fprintf(tw, "Private key:\t%s %v\n", ui.FailTag(), err)
		} else {
			fmt.Fprintf(tw, "Private key:\t%s matches certificate\n", ui.OKTag())
		}
	}

	return tw.Flush()
}

// LoadCertificate reads the first certificate from a PEM file.
func LoadCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("%s: no PEM certificate found", path)
		}
		if block.Type == "CERTIFICATE" {
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return cert, nil
		}
	}
}

func certTag(cert *x509.Certificate, now time.Time) string {
	switch {
	case now.After(cert.NotAfter):
		return ui.FailTag() + " expired"
	case now.Before(cert.NotBefore):
		return ui.FailTag() + " not yet valid"
	case cert.NotAfter.Sub(now) < certExpiryWarning:
		return ui.WarnTag() + " expires soon"
	default:
		return ui.OKTag()
	}
}

// unjoin splits an errors.Join result into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
