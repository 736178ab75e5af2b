package http

import "github.com/go-playground/validator/v10"

// validate instancia compartida para las reglas struct-tag de los DTOs.
var validate = validator.New()
