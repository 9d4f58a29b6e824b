package hkaccessory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type HapServiceType string

const (
	SType_HapProtocolInfo               HapServiceType = "A2"
	SType_AccessoryInfo                 HapServiceType = "3E"
	SType_AccessControl                 HapServiceType = "DA"
	SType_AirPurifier                   HapServiceType = "BB"
	SType_AirQualitySensor              HapServiceType = "8D"
	SType_AudioStreamManagement         HapServiceType = "127"
	SType_BatteryService                HapServiceType = "96"
	SType_CameraRTPStreamManagement     HapServiceType = "110"
	SType_CarbonDioxideSensor           HapServiceType = "97"
	SType_CarbonMonoxideSensor          HapServiceType = "7F"
	SType_ContactSensor                 HapServiceType = "80"
	SType_DataStreamTransportManagement HapServiceType = "129"
	SType_Door                          HapServiceType = "81"
	SType_Doorbell                      HapServiceType = "121"
	SType_Fan                           HapServiceType = "B7"
	SType_Faucet                        HapServiceType = "D7"
	SType_FilterMaintenance             HapServiceType = "BA"
	SType_GarageDoorOpener              HapServiceType = "41"
	SType_HeaterCooler                  HapServiceType = "BC"
	SType_HumidifierDehumidifier        HapServiceType = "BD"
	SType_HumiditySensor                HapServiceType = "82"
	SType_IrrigationSystem              HapServiceType = "CF"
	SType_LeakSensor                    HapServiceType = "83"
	SType_LightBulb                     HapServiceType = "43"
	SType_LightSensor                   HapServiceType = "84"
	SType_LockManagement                HapServiceType = "44"
	SType_LockMechanism                 HapServiceType = "45"
	SType_Microphone                    HapServiceType = "112"
	SType_MotionSensor                  HapServiceType = "85"
	SType_OccupancySensor               HapServiceType = "86"
	SType_Outlet                        HapServiceType = "47"
	SType_SecuritySystem                HapServiceType = "7E"
	SType_ServiceLabel                  HapServiceType = "CC"
	SType_Siri                          HapServiceType = "133"
	SType_Slat                          HapServiceType = "B9"
	SType_SmokeSensor                   HapServiceType = "87"
	SType_Speaker                       HapServiceType = "113"
	SType_StatelessProgrammableSwitch   HapServiceType = "89"
	SType_Switch                        HapServiceType = "49"
	SType_TargetControl                 HapServiceType = "125"
	SType_TargetControlManagement       HapServiceType = "122"
	SType_TemperatureSensor             HapServiceType = "8A"
	SType_Thermostat                    HapServiceType = "4A"
	SType_Valve                         HapServiceType = "D0"
	SType_Window                        HapServiceType = "8B"
	SType_WindowCovering                HapServiceType = "8C"
)

// ToShort returns the short form of an Apple defined service type.
func (h HapServiceType) ToShort() HapServiceType {
	return HapServiceType(ShortUUID(string(h)))
}

// Long returns the full uuid of the service type.
func (h HapServiceType) Long() string {
	return expandShort(string(h))
}

type HapCharacteristicType string

const (
	CType_Identify                                  HapCharacteristicType = "14"
	CType_Manufacturer                              HapCharacteristicType = "20"
	CType_Model                                     HapCharacteristicType = "21"
	CType_Name                                      HapCharacteristicType = "23"
	CType_ConfiguredName                            HapCharacteristicType = "E3"
	CType_AccessControlLevel                        HapCharacteristicType = "E5"
	CType_PasswordSetting                           HapCharacteristicType = "E4"
	CType_SerialNumber                              HapCharacteristicType = "30"
	CType_Version                                   HapCharacteristicType = "37"
	CType_FirmwareRevision                          HapCharacteristicType = "52"
	CType_HardwareRevision                          HapCharacteristicType = "53"
	CType_On                                        HapCharacteristicType = "25"
	CType_Brightness                                HapCharacteristicType = "8"
	CType_AccessoryFlags                            HapCharacteristicType = "A6"
	CType_Active                                    HapCharacteristicType = "B0"
	CType_ActiveIdentifier                          HapCharacteristicType = "E7"
	CType_AdministratorOnlyAccess                   HapCharacteristicType = "1"
	CType_AudioFeedback                             HapCharacteristicType = "5"
	CType_AirParticulateSize                        HapCharacteristicType = "65"
	CType_AirQuality                                HapCharacteristicType = "95"
	CType_BatteryLevel                              HapCharacteristicType = "68"
	CType_ButtonEvent                               HapCharacteristicType = "126"
	CType_CarbonMonoxideLevel                       HapCharacteristicType = "90"
	CType_CarbonMonoxidePeakLevel                   HapCharacteristicType = "91"
	CType_CarbonMonoxideDetected                    HapCharacteristicType = "69"
	CType_CarbonDioxideLevel                        HapCharacteristicType = "93"
	CType_CarbonDioxidePeakLevel                    HapCharacteristicType = "94"
	CType_CarbonDioxideDetected                     HapCharacteristicType = "92"
	CType_ChargingState                             HapCharacteristicType = "8F"
	CType_CoolingThresholdTemperature               HapCharacteristicType = "D"
	CType_ColorTemperature                          HapCharacteristicType = "CE"
	CType_ContactSensorState                        HapCharacteristicType = "6A"
	CType_CurrentAmbientLightLevel                  HapCharacteristicType = "6B"
	CType_CurrentHorizontalTiltAngle                HapCharacteristicType = "6C"
	CType_CurrentAirPurifierState                   HapCharacteristicType = "A9"
	CType_CurrentSlatState                          HapCharacteristicType = "AA"
	CType_CurrentPosition                           HapCharacteristicType = "6D"
	CType_CurrentVerticalTiltAngle                  HapCharacteristicType = "6E"
	CType_CurrentHumidifierDehumidifierState        HapCharacteristicType = "B3"
	CType_CurrentDoorState                          HapCharacteristicType = "E"
	CType_CurrentFanState                           HapCharacteristicType = "AF"
	CType_CurrentHeatingCoolingState                HapCharacteristicType = "F"
	CType_CurrentHeaterCoolerState                  HapCharacteristicType = "B1"
	CType_CurrentRelativeHumidity                   HapCharacteristicType = "10"
	CType_CurrentTemperature                        HapCharacteristicType = "11"
	CType_CurrentTiltAngle                          HapCharacteristicType = "C1"
	CType_DigitalZoom                               HapCharacteristicType = "11D"
	CType_FilterLifeLevel                           HapCharacteristicType = "AB"
	CType_FilterChangeIndication                    HapCharacteristicType = "AC"
	CType_HeatingThresholdTemperature               HapCharacteristicType = "12"
	CType_HoldPosition                              HapCharacteristicType = "6F"
	CType_Hue                                       HapCharacteristicType = "13"
	CType_ImageRotation                             HapCharacteristicType = "11E"
	CType_ImageMirroring                            HapCharacteristicType = "11F"
	CType_InUse                                     HapCharacteristicType = "D2"
	CType_IsConfigured                              HapCharacteristicType = "D6"
	CType_LeakDetected                              HapCharacteristicType = "70"
	CType_LockControlPoint                          HapCharacteristicType = "19"
	CType_LockCurrentState                          HapCharacteristicType = "1D"
	CType_LockLastKnownAction                       HapCharacteristicType = "1C"
	CType_LockManagementAutoSecurityTimeout         HapCharacteristicType = "1A"
	CType_LockPhysicalControls                      HapCharacteristicType = "A7"
	CType_LockTargetState                           HapCharacteristicType = "1E"
	CType_Logs                                      HapCharacteristicType = "1F"
	CType_MotionDetected                            HapCharacteristicType = "22"
	CType_Mute                                      HapCharacteristicType = "11A"
	CType_NightVision                               HapCharacteristicType = "11B"
	CType_NitrogenDioxideDensity                    HapCharacteristicType = "C4"
	CType_ObstructionDetected                       HapCharacteristicType = "24"
	CType_PM25Density                               HapCharacteristicType = "C6"
	CType_OccupancyDetected                         HapCharacteristicType = "71"
	CType_OpticalZoom                               HapCharacteristicType = "11C"
	CType_OutletInUse                               HapCharacteristicType = "26"
	CType_OzoneDensity                              HapCharacteristicType = "C3"
	CType_PM10Density                               HapCharacteristicType = "C7"
	CType_PositionState                             HapCharacteristicType = "72"
	CType_ProgramMode                               HapCharacteristicType = "D1"
	CType_ProgrammableSwitchEvent                   HapCharacteristicType = "73"
	CType_RelativeHumidityDehumidifierThreshold     HapCharacteristicType = "C9"
	CType_RelativeHumidityHumidifierThreshold       HapCharacteristicType = "CA"
	CType_RemainingDuration                         HapCharacteristicType = "D4"
	CType_ResetFilterIndication                     HapCharacteristicType = "AD"
	CType_RotationDirection                         HapCharacteristicType = "28"
	CType_RotationSpeed                             HapCharacteristicType = "29"
	CType_Saturation                                HapCharacteristicType = "2F"
	CType_SecuritySystemAlarmType                   HapCharacteristicType = "BE"
	CType_SecuritySystemCurrentState                HapCharacteristicType = "66"
	CType_SecuritySystemTargetState                 HapCharacteristicType = "67"
	CType_SelectedAudioStreamConfiguration          HapCharacteristicType = "128"
	CType_ServiceLabelIndex                         HapCharacteristicType = "CB"
	CType_ServiceLabelNamespace                     HapCharacteristicType = "CD"
	CType_SetupDataStreamTransport                  HapCharacteristicType = "131"
	CType_SelectedRTPStreamConfiguration            HapCharacteristicType = "117"
	CType_SetupEndpoints                            HapCharacteristicType = "118"
	CType_SiriInputType                             HapCharacteristicType = "132"
	CType_SlatType                                  HapCharacteristicType = "C0"
	CType_SmokeDetected                             HapCharacteristicType = "76"
	CType_StatusActive                              HapCharacteristicType = "75"
	CType_StatusFault                               HapCharacteristicType = "77"
	CType_StatusJammed                              HapCharacteristicType = "78"
	CType_StatusLowBattery                          HapCharacteristicType = "79"
	CType_StatusTampered                            HapCharacteristicType = "7A"
	CType_StreamingStatus                           HapCharacteristicType = "120"
	CType_SupportedAudioStreamConfiguration         HapCharacteristicType = "115"
	CType_SupportedDataStreamTransportConfiguration HapCharacteristicType = "130"
	CType_SupportedRTPConfiguration                 HapCharacteristicType = "116"
	CType_SupportedVideoStreamConfiguration         HapCharacteristicType = "114"
	CType_SulphurDioxideDensity                     HapCharacteristicType = "C5"
	CType_SwingMode                                 HapCharacteristicType = "B6"
	CType_TargetAirPurifierState                    HapCharacteristicType = "A8"
	CType_TargetFanState                            HapCharacteristicType = "BF"
	CType_TargetTiltAngle                           HapCharacteristicType = "C2"
	CType_TargetHeaterCoolerState                   HapCharacteristicType = "B2"
	CType_SetDuration                               HapCharacteristicType = "D3"
	CType_TargetControlSupportedConfiguration       HapCharacteristicType = "123"
	CType_TargetControlList                         HapCharacteristicType = "124"
	CType_TargetHorizontalTiltAngle                 HapCharacteristicType = "7B"
	CType_TargetHumidifierDehumidifierState         HapCharacteristicType = "B4"
	CType_TargetPosition                            HapCharacteristicType = "7C"
	CType_TargetDoorState                           HapCharacteristicType = "32"
	CType_TargetHeatingCoolingState                 HapCharacteristicType = "33"
	CType_TargetRelativeHumidity                    HapCharacteristicType = "34"
	CType_TargetTemperature                         HapCharacteristicType = "35"
	CType_TemperatureDisplayUnits                   HapCharacteristicType = "36"
	CType_TargetVerticalTiltAngle                   HapCharacteristicType = "7D"
	CType_ValveType                                 HapCharacteristicType = "D5"
	CType_VOCDensity                                HapCharacteristicType = "C8"
	CType_Volume                                    HapCharacteristicType = "119"
	CType_WaterLevel                                HapCharacteristicType = "B5"
)

// ToShort returns the short form of an Apple defined characteristic type.
// Custom uuids are returned unchanged.
func (h HapCharacteristicType) ToShort() HapCharacteristicType {
	return HapCharacteristicType(ShortUUID(string(h)))
}

// Long returns the full uuid of the characteristic type.
func (h HapCharacteristicType) Long() string {
	return expandShort(string(h))
}

// HAPBaseUUID is the suffix shared by every Apple defined type.
const HAPBaseUUID = "-0000-1000-8000-0026BB765291"

// NormalizeUUID accepts a short HAP type ("25", "0000003E") or a full uuid
// and returns the upper case long form.
func NormalizeUUID(s string) (string, error) {
	u, err := uuid.Parse(expandShort(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidUUID, s, err)
	}
	return strings.ToUpper(u.String()), nil
}

func expandShort(s string) string {
	if len(s) == 0 || len(s) > 8 || strings.Contains(s, "-") {
		return s
	}
	return strings.Repeat("0", 8-len(s)) + strings.ToUpper(s) + HAPBaseUUID
}

// IsAppleDefined reports whether a normalized uuid lives in the HAP namespace.
func IsAppleDefined(long string) bool {
	return strings.HasSuffix(strings.ToUpper(long), HAPBaseUUID)
}

// ShortUUID strips the HAP base and leading zeros from an Apple defined uuid.
func ShortUUID(long string) string {
	if !IsAppleDefined(long) {
		return long
	}
	head := strings.TrimLeft(strings.ToUpper(long[:len(long)-len(HAPBaseUUID)]), "0")
	if head == "" {
		return "0"
	}
	return head
}
