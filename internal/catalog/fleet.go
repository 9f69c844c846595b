package catalog

import (
	"azoom-rental-backend/internal/domain"
)

const imageRoot = "CarsForRent/"

func gallery(dir, front, side, rear, interior string) (string, []domain.CarAngle) {
	base := imageRoot + dir + "/"
	return base + front, []domain.CarAngle{
		{Angle: "Front", Image: base + front},
		{Angle: "Side", Image: base + side},
		{Angle: "Rear", Image: base + rear},
		{Angle: "Interior", Image: base + interior},
	}
}

func car(name string, dollarsPerDay int64, stock int, fuel domain.FuelType, image string, angles []domain.CarAngle) domain.Car {
	return domain.Car{
		Name:             name,
		PricePerDayCents: dollarsPerDay * 100,
		OriginalStock:    stock,
		FuelType:         fuel,
		Image:            image,
		Angles:           angles,
	}
}

// fleet is the static catalog, in display order.
var fleet = func() []domain.Car {
	cars := make([]domain.Car, 0, 8)
	add := func(name string, price int64, stock int, fuel domain.FuelType, dir, front, side, rear, interior string) {
		img, angles := gallery(dir, front, side, rear, interior)
		cars = append(cars, car(name, price, stock, fuel, img, angles))
	}

	add("Honda E Electric Advance", 55, 5, domain.FuelTypeElectric,
		"Honda E Electric Advance", "front.jpg", "side.jpg", "back.jpg", "interior.jpeg")
	add("Honda Jazz E HEV", 50, 6, domain.FuelTypeHybrid,
		"Honda Jazz E HEV", "front.jpg", "side.jpg", "back.jpg", "interior.jpg")
	add("Honda Super-ONE EV", 65, 4, domain.FuelTypeElectric,
		"Honda Super-ONE EV", "front.jpg", "side.jpg", "back.jpg", "interior.jpg")
	add("Honda ZR-V E HEV", 70, 5, domain.FuelTypeHybrid,
		"Honda ZR-V E HEV", "2024-02-2024-honda-zr-v-e-hev-lx-review-9.jpeg", "side.jpeg", "back.jpeg", "interior.jpg")
	add("Tesla Model 3", 95, 5, domain.FuelTypeElectric,
		"Tesla Model 3", "front.jpg", "side.jpg", "back.jpg", "interior.jpg")
	add("Toyota bZ4X", 78, 4, domain.FuelTypeElectric,
		"Toyota bZ4X", "front.jpeg", "side.jpeg", "back.jpg", "interior.jpeg")
	add("Toyota Proace City Electric", 60, 5, domain.FuelTypeElectric,
		"Toyota proace city electric", "front.jpeg", "side.jpeg", "back.jpeg", "interior.jpeg")
	add("Toyota Vios Full Hybrid", 55, 6, domain.FuelTypeHybrid,
		"Toyota vios full hybrid", "front.jpg", "side.jpg", "back.jpg", "interior.jpg")
	return cars
}()

// Fleet returns a copy of the static catalog without stock information.
func Fleet() []domain.Car {
	out := make([]domain.Car, len(fleet))
	for i, c := range fleet {
		c.Angles = append([]domain.CarAngle(nil), c.Angles...)
		out[i] = c
	}
	return out
}

// Lookup finds a car by exact name.
func Lookup(name string) (domain.Car, bool) {
	for _, c := range fleet {
		if c.Name == name {
			c.Angles = append([]domain.CarAngle(nil), c.Angles...)
			return c, true
		}
	}
	return domain.Car{}, false
}
