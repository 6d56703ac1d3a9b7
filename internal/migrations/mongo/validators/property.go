package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"type",
			"total_fractions",
			"min_stay_days",
			"max_stay_days",
			"registered_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"House",
					"Apartment",
					"Farmhouse",
					"Lot",
					"Other",
				},
			},

			"total_fractions": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  52,
			},

			"per_fraction_days": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"min_stay_days": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"max_stay_days": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"active_reservation_limit": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"holiday_limit": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"address": bson.M{
				"bsonType": "object",
			},

			"estimated_value": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"registered_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
