package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
)

// seedNamespace derives sample ids from slugs so reseeding keeps cart and wishlist references valid.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront-api/catalog"))

// SeedID is the stable product id for a seeded title.
func SeedID(title string) string {
	return uuid.NewSHA1(seedNamespace, []byte(slug.Make(title))).String()
}

type sampleProduct struct {
	title       string
	price       string
	description string
	category    string
	brand       string
	sizes       []string
	image       string
	status      string
	rate        float64
	count       int
}

var sampleCatalog = []sampleProduct{
	{
		title:       "Black Roll-Top Backpack",
		price:       "89.99",
		description: "Stylish and durable roll-top backpack in black, perfect for daily use",
		category:    "Bags",
		brand:       "Northpack",
		image:       "/images/backpack-black.jpg",
		status:      domain.StatusNew,
	},
	{
		title:       "Yellow Dinosaur Plush",
		price:       "29.99",
		description: "Adorable yellow dinosaur plush toy with blue spikes",
		category:    "Toys",
		brand:       "Dino Friends",
		image:       "/images/dino-yellow.jpg",
		rate:        4.8,
		count:       120,
	},
	{
		title:       "Leather Key Holder",
		price:       "19.99",
		description: "Genuine leather key holder in tan color",
		category:    "Accessories",
		brand:       "Tannery Co",
		image:       "/images/key-holder-tan.jpg",
	},
	{
		title:       "White Baseball Cap",
		price:       "24.99",
		description: "Classic white baseball cap with adjustable strap",
		category:    "Accessories",
		brand:       "Fieldline",
		sizes:       []string{"S", "M", "L"},
		image:       "/images/cap-white.jpg",
		status:      domain.StatusOutOfStock,
	},
	{
		title:       "Grey Denim Backpack",
		price:       "79.99",
		description: "Modern denim backpack in grey, perfect for urban lifestyle",
		category:    "Bags",
		brand:       "Northpack",
		image:       "/images/backpack-grey.jpg",
	},
	{
		title:       "Blue Dinosaur Plush",
		price:       "29.99",
		description: "Cute blue dinosaur plush toy with yellow details",
		category:    "Toys",
		brand:       "Dino Friends",
		image:       "/images/dino-blue.jpg",
	},
	{
		title:       "Brown Belt",
		price:       "34.99",
		description: "Classic brown leather belt with silver buckle",
		category:    "Accessories",
		brand:       "Tannery Co",
		sizes:       []string{"S", "M", "L", "XL"},
		image:       "/images/belt-brown.jpg",
	},
	{
		title:       "Grey Denim Jeans",
		price:       "59.99",
		description: "Modern grey denim jeans with slim fit",
		category:    "Clothing",
		brand:       "Fieldline",
		sizes:       []string{"28", "30", "32", "34", "36"},
		image:       "/images/jeans-grey.jpg",
	},
	{
		title:       "Striped Pouch",
		price:       "14.99",
		description: "Black and white striped canvas pouch",
		category:    "Accessories",
		brand:       "Canvas Lab",
		image:       "/images/pouch-striped.jpg",
	},
	{
		title:       "Blue Pattern Pouch",
		price:       "14.99",
		description: "Blue patterned canvas pouch with zipper",
		category:    "Accessories",
		brand:       "Canvas Lab",
		image:       "/images/pouch-blue.jpg",
	},
	{
		title:       "Tan Crossbody Bag",
		price:       "49.99",
		description: "Tan leather crossbody bag with textured finish",
		category:    "Bags",
		brand:       "Tannery Co",
		image:       "/images/bag-tan.jpg",
	},
}

// SampleProducts builds the demo catalog. Creation times descend in list
// order so the default "newest" sort shows the list as written.
func SampleProducts(now time.Time) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(sampleCatalog))
	for i, sample := range sampleCatalog {
		price, err := decimal.NewFromString(sample.price)
		if err != nil {
			return nil, err
		}
		product, err := domain.NewProduct(SeedID(sample.title), sample.title, price)
		if err != nil {
			return nil, err
		}
		product.Description = sample.description
		product.Category = sample.category
		product.Brand = sample.brand
		product.Sizes = sample.sizes
		product.Image = sample.image
		product.Status = sample.status
		if err := product.Rate(sample.rate, sample.count); err != nil {
			return nil, err
		}
		product.CreatedAt = now.Add(-time.Duration(i) * time.Minute).UTC()
		products = append(products, product)
	}
	return products, nil
}
