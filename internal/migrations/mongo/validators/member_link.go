package validators

import "go.mongodb.org/mongo-driver/bson"

var MemberLinkValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"property_id",
			"member_id",
			"role",
			"fractions",
			"current_year_balance",
			"next_year_balance",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"member_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"role": bson.M{
				"bsonType": "string",
				"enum": []string{
					"master_owner",
					"co_owner",
				},
			},

			"fractions": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  52,
			},

			"current_year_balance": bson.M{
				"bsonType": "double",
			},

			"next_year_balance": bson.M{
				"bsonType": "double",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
