package schema

import "sync"

// Natural key of an asset record. Loaders upsert on it.
const DeviceIDPath = "deviceId"

var StageValues = []string{
	"Operational", "Active", "Online", "In Use", "Standby", "Inactive", "Offline",
	"Maintenance", "In Repair", "End of Life", "Disposed", "Retired", "Missing",
	"Planning", "Commissioning", "Testing", "Active Support", "Limited Support", "Unsupported",
}

var HardwareTypeValues = []string{
	"PLC", "Laptop", "Router", "Workstation", "Printer", "MobileDevice",
	"Server", "Switch", "Other", "Sensor", "HMI",
}

var (
	assetsOnce sync.Once
	assets     *Registry
)

// Assets returns the asset catalog. It is built on first use and never changes afterwards.
func Assets() *Registry {
	assetsOnce.Do(func() {
		assets = NewRegistry(assetFields()...)
	})
	return assets
}

func str(path, label string) FieldDescriptor {
	return FieldDescriptor{Path: path, Label: label, Kind: KindString}
}

func num(path, label string) FieldDescriptor {
	return FieldDescriptor{Path: path, Label: label, Kind: KindNumber}
}

func date(path, label string) FieldDescriptor {
	return FieldDescriptor{Path: path, Label: label, Kind: KindISODate}
}

func assetFields() []FieldDescriptor {
	return []FieldDescriptor{
		{Path: DeviceIDPath, Label: "Device ID", Required: true, Kind: KindString},
		{Path: "name", Label: "Asset Name", Required: true, Kind: KindString},
		str("description", "Description"),
		str("documentation", "Documentation URL"),
		date("installationDate", "Installation Date"),
		date("manufactureDate", "Manufacture Date"),
		{Path: "stage", Label: "Asset Stage", Required: true, Kind: KindEnum, Enum: StageValues},
		str("lifecycle", "Lifecycle Stage"),
		str("serialNumber", "Serial Number"),
		date("last_seen", "Last Seen Timestamp"),
		str("zone", "Network Zone"),
		str("release", "Release Version"),
		date("modified", "Config Last Modified Date"),
		str("exposure", "Network Exposure"),
		str("os_firmware", "OS / Firmware"),
		str("last_seen_by", "Last Seen By (Node)"),
		date("last_patch_date", "Last Patch Date"),
		num("days_since_last_patch", "Days Since Last Patch"),
		str("assignedUser", "Assigned User"),
		str("department", "Department"),
		str("cpu", "CPU (Legacy)"),
		str("ram", "RAM (Legacy)"),
		str("storage", "Storage (Legacy)"),
		str("imageUrl", "Image URL"),
		num("purchaseCost", "Purchase Cost"),
		num("currentValue", "Current Value"),
		date("retirementDate", "Retirement Date"),
		str("hostedOn", "Hosted On"),
		{Path: "tags", Label: "Tags", Kind: KindStringArrayCSV},

		str("hardware.vendor", "Hardware Vendor"),
		str("hardware.model", "Hardware Model"),
		{Path: "hardware.type", Label: "Hardware Type", Kind: KindEnum, Enum: HardwareTypeValues},
		str("hardware.category", "Hardware Category"),
		str("hardware.version", "Hardware Version"),
		str("hardware.orderNumber", "Order Number"),
		str("hardware.description", "Hardware Description"),
		date("hardware.endOfLife", "Hardware End of Life"),
		num("hardware.extended.MTBF", "MTBF (hours)"),

		str("context.location.name", "Location Name"),
		str("context.location.locationId", "Location ID"),
		str("context.referenceLocation.name", "Reference Location Name"),
		str("context.otSystem.name", "OT System Name"),
		str("context.deviceGroup", "Device Group"),
		str("context.businessProcesses[0].name", "Business Process"),
		str("context.businessProcesses[0].criticality", "Business Process Criticality"),
		str("context.businessProcesses[0].role", "Business Process Role"),

		date("warranty.startDate", "Warranty Start Date"),
		date("warranty.endDate", "Warranty End Date"),
		str("warranty.provider", "Warranty Provider"),

		str("criticality.rating", "Criticality Rating"),
		num("criticality.impact", "Criticality Impact Score"),
		num("criticality.businessCriticality", "Business Criticality Score"),

		str("safety.certification", "Safety Certification"),
		str("safety.level", "Safety Level (SIL)"),
		date("safety.lastAssessment", "Safety Last Assessment"),

		str("security.authenticationMethod", "Authentication Method"),
		{Path: "security.encryptionEnabled", Label: "Encryption Enabled", Kind: KindBoolean},
		num("security.securityScore", "Security Score"),
		date("security.lastSecurityAssessment", "Last Security Assessment"),

		num("riskAssessment.overallRisk", "Overall Risk"),
		str("riskAssessment.threatLevel", "Threat Level"),
	}
}
