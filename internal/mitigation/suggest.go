// Package mitigation suggests security mitigations for an imported asset.
package mitigation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BartekS5/assetimport/internal/fieldpath"
	"github.com/BartekS5/assetimport/pkg/models"
	"github.com/BartekS5/assetimport/pkg/utils"
)

var ErrNoAssetName = errors.New("mitigation request has no asset name")

// Request describes one asset. Software and Vulnerabilities may be empty.
type Request struct {
	AssetType       string   `json:"assetType"`
	AssetName       string   `json:"assetName"`
	Software        []string `json:"softwareList"`
	Vulnerabilities []string `json:"knownVulnerabilities,omitempty"`
}

// Suggester returns a list of mitigations for an asset. Implementations are stateless.
type Suggester interface {
	Suggest(ctx context.Context, req Request) ([]string, error)
}

// Extended-property keys read by RequestFromRecord.
var (
	softwareKeys      = []string{"extended.software", "extended.softwareList"}
	vulnerabilityKeys = []string{"extended.vulnerabilities", "extended.knownVulnerabilities"}
)

// RequestFromRecord builds a request from an asset record. Software and
// vulnerabilities come from comma-separated extended properties; the
// OS/firmware field counts as installed software.
func RequestFromRecord(rec models.Record) Request {
	req := Request{
		AssetType: readString(rec, "hardware.type"),
		AssetName: readString(rec, "name"),
	}
	if req.AssetName == "" {
		req.AssetName = readString(rec, "deviceId")
	}

	if fw := readString(rec, "os_firmware"); fw != "" {
		req.Software = append(req.Software, fw)
	}
	for _, key := range softwareKeys {
		req.Software = append(req.Software, utils.SplitCSV(readString(rec, key))...)
	}
	for _, key := range vulnerabilityKeys {
		req.Vulnerabilities = append(req.Vulnerabilities, utils.SplitCSV(readString(rec, key))...)
	}
	return req
}

func readString(rec models.Record, path string) string {
	v, ok := fieldpath.Read(rec, fieldpath.MustParse(path))
	if !ok {
		return ""
	}
	return strings.TrimSpace(utils.Stringify(v))
}

// RuleSuggester answers from a fixed rule table, without any remote call.
type RuleSuggester struct{}

var typeRules = map[string][]string{
	"plc": {
		"Place the controller in an isolated OT network zone and restrict access to engineering workstations.",
		"Enable controller write protection and require authentication for program downloads.",
	},
	"hmi": {
		"Run the HMI in kiosk mode and disable unused services and USB ports.",
	},
	"sensor": {
		"Restrict sensor traffic to its collector with firewall rules.",
	},
	"router": {
		"Disable remote management on untrusted interfaces and rotate administrative credentials.",
	},
	"switch": {
		"Disable unused ports and enable port security.",
	},
	"server": {
		"Apply the vendor hardening baseline and enable centralized logging.",
	},
	"workstation": {
		"Enforce endpoint protection and least-privilege user accounts.",
	},
	"laptop": {
		"Enable full-disk encryption and endpoint protection.",
	},
	"mobiledevice": {
		"Enroll the device in mobile device management and enforce a screen lock.",
	},
	"printer": {
		"Update printer firmware and disable unused network protocols.",
	},
}

const baseline = "Review access control lists and remove unused accounts."

func (RuleSuggester) Suggest(ctx context.Context, req Request) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.AssetName) == "" {
		return nil, ErrNoAssetName
	}

	var out []string
	out = append(out, typeRules[strings.ToLower(strings.TrimSpace(req.AssetType))]...)

	for _, sw := range dedupe(req.Software) {
		out = append(out, fmt.Sprintf("Patch %s to the latest vendor-supported release.", sw))
	}
	for _, v := range dedupe(req.Vulnerabilities) {
		out = append(out, fmt.Sprintf("Remediate %s or apply a compensating control until a fix is available.", v))
	}

	out = append(out, baseline)
	return out, nil
}

// dedupe drops blanks and repeats, returning the rest sorted.
func dedupe(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[strings.ToLower(it)] {
			continue
		}
		seen[strings.ToLower(it)] = true
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}
