package shared

type VehicleType string

const (
	VehicleCar        VehicleType = "CAR"
	VehicleMotorcycle VehicleType = "MOTORCYCLE"
	VehicleTruck      VehicleType = "TRUCK"
	VehicleBus        VehicleType = "BUS"
	VehicleVan        VehicleType = "VAN"
	VehicleOther      VehicleType = "OTHER"
)

func (t VehicleType) IsValid() bool {
	switch t {
	case VehicleCar, VehicleMotorcycle, VehicleTruck, VehicleBus, VehicleVan, VehicleOther:
		return true
	}
	return false
}

func VehicleTypes() []VehicleType {
	return []VehicleType{VehicleCar, VehicleMotorcycle, VehicleTruck, VehicleBus, VehicleVan, VehicleOther}
}
