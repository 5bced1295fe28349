// Package http provides the JSON response helpers used by HTTP handlers.
//
//	res := gohttp.NewResponse(w)
//	res.Success(map[string]any{"result": "path1 result"})  // 200 {"data": {...}}
//	res.Error(http.StatusBadRequest, "bad input")          // 400 {"message": "bad input"}
//	res.NotFound()                                         // 404 {"message": "Not found."}
//	res.ServerError(err.Error())                           // 500 {"message": "..."}
package http
