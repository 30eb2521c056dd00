package postgres

var ApplyRuntimeParams = applyRuntimeParams
