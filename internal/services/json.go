package services

import (
  "encoding/json"
  "gorm.io/datatypes"
)

func marshalSources(sources []string) (datatypes.JSON, error) {
  raw, err := json.Marshal(sources)
  if err != nil {
    return nil, err
  }
  return datatypes.JSON(raw), nil
}
