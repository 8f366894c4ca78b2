package config

import (
	"fmt"

	"github.com/iwvelando/property-forecast/pkg/validation"
	"github.com/xeipuuv/gojsonschema"
)

// RequestSchema is the JSON schema of a projection request body. It checks
// shape and types only; value rules live in ValidateRecord.
const RequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["property"],
  "properties": {
    "property": {"$ref": "#/definitions/property"},
    "assumptions": {
      "type": "object",
      "properties": {
        "capitalGrowthRate": {"type": "number"},
        "rentalGrowthRate": {"type": "number"},
        "cpiRate": {"type": "number"},
        "rentalGrowthSource": {"type": "string", "enum": ["assumptions", "record", "property", ""]},
        "medicareLevyRate": {"type": "number", "minimum": 0}
      }
    },
    "from": {"type": "integer", "minimum": 0},
    "to": {"type": "integer", "minimum": 0}
  },
  "definitions": {
    "loan": {
      "type": "object",
      "properties": {
        "amount": {"type": "number"},
        "enabled": {"type": "boolean"},
        "interestRate": {"type": "number"},
        "termYears": {"type": "integer", "minimum": 0},
        "type": {"type": "string"},
        "ioTermYears": {"type": "integer", "minimum": 0},
        "primarySecurityValue": {"type": "number"},
        "existingDebt": {"type": "number"},
        "maxLvr": {"type": "number", "minimum": 0, "maximum": 100}
      }
    },
    "property": {
      "type": "object",
      "required": ["purchasePrice", "weeklyRent", "mainLoan"],
      "properties": {
        "name": {"type": "string"},
        "state": {"type": "string"},
        "startDate": {"type": "string", "pattern": "^$|^[0-9]{4}-(0[1-9]|1[0-2])$"},
        "purchasePrice": {"type": "number"},
        "weeklyRent": {"type": "number"},
        "rentalGrowthRate": {"type": "number"},
        "vacancyRate": {"type": "number"},
        "isNewProperty": {"type": "boolean"},
        "depreciationMethod": {"type": "string"},
        "buildingValue": {"type": "number"},
        "plantEquipmentValue": {"type": "number"},
        "construction": {
          "type": "object",
          "properties": {
            "enabled": {"type": "boolean"},
            "constructionYear": {"type": "integer"},
            "periodMonths": {"type": "integer", "minimum": 0},
            "interestRate": {"type": "number"},
            "landValue": {"type": "number"},
            "constructionValue": {"type": "number"},
            "progressPayments": {
              "type": "array",
              "items": {
                "type": "object",
                "required": ["percentage", "month"],
                "properties": {
                  "percentage": {"type": "number"},
                  "month": {"type": "integer", "minimum": 0},
                  "description": {"type": "string"}
                }
              }
            }
          }
        },
        "purchaseCosts": {
          "type": "object",
          "properties": {
            "stampDuty": {"type": "number"},
            "legalFees": {"type": "number"},
            "otherCosts": {"type": "number"}
          }
        },
        "constructionCosts": {"type": "number"},
        "mainLoan": {"$ref": "#/definitions/loan"},
        "equityLoan": {"$ref": "#/definitions/loan"},
        "depositAmount": {"type": "number"},
        "holdingCostFunding": {
          "type": "object",
          "properties": {
            "policy": {"type": "string"},
            "cashPercentage": {"type": "number"}
          }
        },
        "capitaliseInterest": {"type": "boolean"},
        "expenses": {
          "type": "object",
          "properties": {
            "councilRates": {"type": "number"},
            "insurance": {"type": "number"},
            "repairs": {"type": "number"},
            "propertyManagement": {"type": "number"},
            "strataFees": {"type": "number"},
            "landTax": {"type": "number"}
          }
        },
        "investors": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["annualIncome"],
            "properties": {
              "id": {"type": "string"},
              "name": {"type": "string"},
              "annualIncome": {"type": "number"},
              "otherIncome": {"type": "number"},
              "medicareLevy": {"type": "boolean"}
            }
          }
        },
        "ownership": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["investorId", "percentage"],
            "properties": {
              "investorId": {"type": "string"},
              "percentage": {"type": "number"}
            }
          }
        }
      }
    }
  }
}`

var requestSchema = mustCompileSchema(RequestSchema)

func mustCompileSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// ValidateRequestJSON checks a projection request body against
// RequestSchema. Violations, including a body that is not JSON at all, are
// returned as validation.ValidationErrors.
func ValidateRequestJSON(data []byte) error {
	result, err := requestSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		var errs validation.ValidationErrors
		errs.Add("(root)", validation.CodeSchema, "request body is not valid JSON: %v", err)
		return errs
	}
	if result.Valid() {
		return nil
	}

	var errs validation.ValidationErrors
	for _, desc := range result.Errors() {
		errs.Add(desc.Field(), validation.CodeSchema, "%s", desc.Description())
	}
	return errs
}
