package model

// Builtin normative profiles. These seed the catalog; a normatives YAML
// document can override or extend them at load time.

func tempTable(design float64, pairs ...float64) TemperatureDerating {
	points := make([]TempPoint, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		points = append(points, TempPoint{AmbientC: pairs[i], Factor: pairs[i+1]})
	}
	return TemperatureDerating{AmbientDesignC: design, Points: points}
}

func groupTable(entries ...GroupEntry) GroupingTable {
	return GroupingTable{Entries: entries}
}

func exact(n int, factor float64) GroupEntry {
	return GroupEntry{Key: GroupKey{N: n}, Factor: factor}
}

func threshold(n int, factor float64) GroupEntry {
	return GroupEntry{Key: GroupKey{N: n, OpenEnded: true}, Factor: factor}
}

// IECProfile returns the builtin IEC 60364 based profile.
// Derating values follow the IEC tables for XLPE insulated conductors
// referenced to a 30°C ambient.
func IECProfile() NormativeProfile {
	buried := groupTable(exact(1, 1.00), exact(2, 0.85), exact(3, 0.75), exact(4, 0.70), exact(5, 0.65), threshold(6, 0.60))
	buriedMulti := groupTable(exact(1, 1.00), exact(2, 0.80), exact(3, 0.70), exact(4, 0.62), threshold(5, 0.55))
	tray := groupTable(exact(1, 1.00), exact(2, 0.88), exact(3, 0.82), exact(4, 0.79), exact(6, 0.76), threshold(9, 0.73))
	conduit := groupTable(exact(1, 1.00), exact(2, 0.80), exact(3, 0.70), exact(4, 0.65), exact(5, 0.60), threshold(6, 0.57))

	return NormativeProfile{
		Code:        "IEC",
		Name:        "IEC 60364",
		Description: "Low-voltage electrical installations per IEC 60364-5-52",
		Country:     "International",
		SafetyFactors: SafetyFactors{
			IscSafetyFactor: 1.25,
			ParallelStrings: 1,
		},
		Cable: CableDefaults{
			Material:   "copper",
			Insulation: "XLPE",
			MaxTempC:   90,
		},
		Installation: InstallationDefaults{
			Method:  MethodBuried,
			Layout:  LayoutSingleLayer,
			DepthCm: 70,
		},
		TemperatureDerating: tempTable(30,
			10, 1.15, 15, 1.12, 20, 1.08, 25, 1.04, 30, 1.00,
			35, 0.96, 40, 0.91, 45, 0.87, 50, 0.82, 55, 0.76, 60, 0.71,
		),
		GroupingDerating: map[Method]MethodGrouping{
			MethodBuried: {
				Layouts: map[Layout]LayoutGrouping{
					LayoutSingleLayer: {Values: buried},
					LayoutMultilayer:  {Values: buriedMulti},
				},
			},
			MethodTrayPerforated:    {Values: &tray},
			MethodTrayNonPerforated: {Values: &conduit},
			MethodConduit:           {Values: &conduit},
		},
		VoltageDrop: VoltageDropLimits{
			MaxPercent:        1.5,
			ReferenceVoltageV: 1500,
		},
		CommercialSections: map[CircuitClass][]float64{
			ClassDCStrings:   {1.5, 2.5, 4, 6, 10, 16, 25, 35},
			ClassCN1Inverter: {16, 25, 35, 50, 70, 95, 120, 150, 185, 240, 300},
			ClassACCircuits:  {2.5, 4, 6, 10, 16, 25, 35, 50, 70, 95, 120, 150, 185, 240, 300},
			ClassMVCircuits:  {35, 50, 70, 95, 120, 150, 185, 240, 300, 400, 500, 630},
		},
	}
}

// NECProfile returns the builtin NEC (NFPA 70) based profile.
// Sections are the metric equivalents of the common AWG/kcmil sizes;
// the ambient correction table is for 90°C rated conductors.
func NECProfile() NormativeProfile {
	adjustment := groupTable(
		exact(1, 1.00), exact(2, 1.00), exact(3, 1.00),
		exact(4, 0.80), exact(5, 0.80), exact(6, 0.80),
		exact(7, 0.70), exact(8, 0.70), exact(9, 0.70),
		threshold(10, 0.50),
	)

	return NormativeProfile{
		Code:        "NEC",
		Name:        "NEC (NFPA 70)",
		Description: "US National Electrical Code, articles 310 and 690",
		Country:     "United States",
		SafetyFactors: SafetyFactors{
			// 1.25 continuous duty x 1.25 irradiance enhancement (NEC 690.8)
			IscSafetyFactor: 1.56,
			ParallelStrings: 1,
		},
		Cable: CableDefaults{
			Material:   "copper",
			Insulation: "THWN-2",
			MaxTempC:   90,
		},
		Installation: InstallationDefaults{
			Method:  MethodConduit,
			Layout:  LayoutSingleLayer,
			DepthCm: 60,
		},
		TemperatureDerating: tempTable(30,
			25, 1.04, 30, 1.00, 35, 0.96, 40, 0.91,
			45, 0.87, 50, 0.82, 55, 0.76, 60, 0.71,
		),
		GroupingDerating: map[Method]MethodGrouping{
			MethodConduit:           {Values: &adjustment},
			MethodTrayPerforated:    {Values: &adjustment},
			MethodTrayNonPerforated: {Values: &adjustment},
			MethodBuried:            {Values: &adjustment},
		},
		VoltageDrop: VoltageDropLimits{
			MaxPercent:        2.0,
			ReferenceVoltageV: 1500,
		},
		CommercialSections: map[CircuitClass][]float64{
			ClassDCStrings:   {2.08, 3.31, 5.26, 8.37, 13.3, 21.2},
			ClassCN1Inverter: {13.3, 21.2, 33.6, 42.4, 53.5, 67.4, 85.0, 107.2, 126.7, 152.0},
			ClassACCircuits:  {3.31, 5.26, 8.37, 13.3, 21.2, 33.6, 42.4, 53.5, 67.4, 85.0, 107.2},
			ClassMVCircuits:  {33.6, 42.4, 53.5, 67.4, 85.0, 107.2, 126.7, 152.0, 177.3, 202.7},
		},
	}
}

// BuiltinProfiles returns the profiles registered on catalog creation.
// CUSTOM starts as an IEC copy and is meant to be reshaped by overrides.
func BuiltinProfiles() []NormativeProfile {
	custom := IECProfile()
	custom.Code = "CUSTOM"
	custom.Name = "Custom profile"
	custom.Description = "Project-specific profile seeded from IEC"
	custom.Country = ""
	return []NormativeProfile{IECProfile(), NECProfile(), custom}
}
