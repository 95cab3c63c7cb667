package listing

// Amenities is the fixed vocabulary a property listing may tag itself
// with. The wizard rejects anything outside it.
var Amenities = []string{
	"air_conditioning",
	"balcony",
	"cctv",
	"electricity",
	"furnished",
	"garden",
	"gym",
	"laundry",
	"parking",
	"pets_allowed",
	"security",
	"swimming_pool",
	"water_supply",
	"wifi",
}

var amenitySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Amenities))
	for _, a := range Amenities {
		set[a] = struct{}{}
	}
	return set
}()

func ValidAmenity(name string) bool {
	_, ok := amenitySet[name]
	return ok
}
