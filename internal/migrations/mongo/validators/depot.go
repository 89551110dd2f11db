package validators

import "go.mongodb.org/mongo-driver/bson"

var DepotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "active"},
		"properties": bson.M{
			"name":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 256},
			"manager_ids": bson.M{"bsonType": []string{"array", "null"}, "items": bson.M{"bsonType": "string"}},
			"active":      bson.M{"bsonType": "bool"},
		},
	},
}

var ItemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"depot_id", "name", "quantity", "visibility"},
		"properties": bson.M{
			"depot_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"name":     bson.M{"bsonType": "string", "minLength": 1, "maxLength": 256},
			"quantity": bson.M{"bsonType": intType, "minimum": 0},
			"visibility": bson.M{
				"bsonType": "string",
				"enum":     []string{"public", "internal", "deleted"},
			},
		},
	},
}

var DepotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"owner":      bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}
