package validators

import "go.mongodb.org/mongo-driver/bson"

var intType = []string{"int", "long"}

var RentalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"depot_id",
			"firstname",
			"lastname",
			"email",
			"purpose",
			"start_date",
			"return_date",
			"state",
			"items",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"depot_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"firstname": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 256},
			"lastname":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 256},
			"email":     bson.M{"bsonType": "string", "maxLength": 256},
			"purpose":   bson.M{"bsonType": "string", "maxLength": 256},

			"start_date":  bson.M{"bsonType": "date"},
			"return_date": bson.M{"bsonType": "date"},

			"state": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"approved",
					"declined",
					"revoked",
					"returned",
				},
			},

			"items": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"item_id", "quantity"},
					"properties": bson.M{
						"item_id":  bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
						"quantity": bson.M{"bsonType": intType, "minimum": 1},
						"returned": bson.M{"bsonType": intType, "minimum": 0},
					},
				},
			},

			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
