// Package autodetect implements the Auto-Detector (§4.10): open a Generic
// Session, provoke a banner, and match substrings against a fixed
// priority-ordered ruleset to guess a device-type tag.
package autodetect

import (
	"strings"

	"github.com/netauto/sessioncore/logger"
	"github.com/netauto/sessioncore/schema"
	"github.com/netauto/sessioncore/transport"
	"github.com/netauto/sessioncore/vendor"
)

// rule is one priority-ordered entry of the detection table. Detect
// picks the device type via pick, which may inspect the banner further
// (the Aruba/Ubiquiti sub-cases).
type rule struct {
	anyOf []string
	pick  func(banner string) schema.DeviceType
}

// tag is a convenience constructor for rules with a single fixed result.
func tag(t schema.DeviceType) func(string) schema.DeviceType {
	return func(string) schema.DeviceType { return t }
}

// rules is evaluated top to bottom; the first match wins (P8: a banner
// containing both "cisco" and "nexus" must resolve to cisco_nxos because
// the cisco_nxos sub-rule is checked before the generic cisco fallback).
var rules = []rule{
	{[]string{"nexus"}, tag(vendor.CiscoNXOS)},
	{[]string{"ios-xr"}, tag(vendor.CiscoIOSXR)},
	{[]string{"ios-xe"}, tag(vendor.CiscoIOSXE)},
	{[]string{"sg300"}, tag(vendor.CiscoSG300)},
	{[]string{"asa"}, tag(vendor.CiscoASA)},
	{[]string{"cisco", "ios", "nx-os"}, tag(vendor.CiscoIOS)},
	{[]string{"junos"}, tag(vendor.JuniperJunos)},
	{[]string{"juniper"}, func(b string) schema.DeviceType {
		if strings.Contains(b, "srx") {
			return vendor.JuniperSRX
		}
		return vendor.JuniperJunos
	}},
	{[]string{"ciena", "saos"}, tag(vendor.CienaSAOS)},
	{[]string{"fortinet", "fortios", "fortigate"}, tag(vendor.FortinetFortiOS)},
	{[]string{"palo alto", "pan-os"}, tag(vendor.PaloAltoPanOS)},
	{[]string{"minilink"}, tag(vendor.EricssonMLTN)},
	{[]string{"ericsson", "ipos"}, tag(vendor.EricssonIPOS)},
	{[]string{"linux", "ubuntu", "centos", "redhat", "debian", "bash"}, tag(vendor.Linux)},
	{[]string{"huawei", "vrp", "ne8000"}, tag(vendor.HuaweiVRP)},
	{[]string{"arista"}, tag(vendor.AristaEOS)},
	{[]string{"procurve"}, tag(vendor.HPProcurve)},
	{[]string{"aruba"}, func(b string) schema.DeviceType {
		if strings.Contains(b, "arubaos") || strings.Contains(b, "mobility controller") {
			return vendor.ArubaOS
		}
		return vendor.ArubaAOSCX // heuristic default (§9 Open Question)
	}},
	{[]string{"ubiquiti", "ubnt"}, func(b string) schema.DeviceType {
		switch {
		case strings.Contains(b, "edgerouter") || strings.Contains(b, "edgeos"):
			return vendor.UbiquitiEdgeRouter
		case strings.Contains(b, "edgeswitch"):
			return vendor.UbiquitiEdgeSwitch
		case strings.Contains(b, "unifi"):
			return vendor.UbiquitiUniFi
		default:
			return vendor.UbiquitiEdgeSwitch // heuristic default (§9 Open Question)
		}
	}},
	{[]string{"mikrotik", "routeros"}, func(b string) schema.DeviceType {
		if strings.Contains(b, "switchos") {
			return vendor.MikrotikSwitchOS
		}
		return vendor.MikrotikRouterOS
	}},
	{[]string{"extremexos", "exos"}, tag(vendor.ExtremeEXOS)},
	{[]string{"dell"}, func(b string) schema.DeviceType {
		if strings.Contains(b, "os10") {
			return vendor.DellOS10
		}
		return ""
	}},
	{[]string{"versa", "flexvnf"}, tag(vendor.VersaFlexVNF)},
}

// Detect opens a Generic Session against creds.Host/Port, issues an empty
// command to provoke a banner, lower-cases the accumulated text, and
// returns the first matching device-type tag, or "" if nothing matched.
// The probe session is always closed before returning (§4.10).
func Detect(creds schema.Credentials, advanced schema.AdvancedOptions) (schema.DeviceType, error) {
	probeCreds := creds
	probeCreds.DeviceType = vendor.Generic

	opts := advanced.Resolve()
	sess := transport.New(probeCreds, vendor.Generic, opts, vendor.Table[vendor.Generic], logger.Log)
	defer sess.Disconnect()

	if err := sess.Connect(); err != nil {
		return "", err
	}

	banner := strings.ToLower(sess.BannerText())
	for _, r := range rules {
		if !containsAny(banner, r.anyOf) {
			continue
		}
		if t := r.pick(banner); t != "" {
			return t, nil
		}
	}
	return "", nil
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
