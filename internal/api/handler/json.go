package handler

import jsoniter "github.com/json-iterator/go"

// json substitui encoding/json mantendo compatibilidade, com serialização
// mais rápida nas respostas da API
var json = jsoniter.ConfigCompatibleWithStandardLibrary
