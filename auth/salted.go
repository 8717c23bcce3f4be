// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package auth

import (
	"fmt"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/apr1_crypt"
	"github.com/GehirnInc/crypt/md5_crypt"
	descrypt "github.com/digitive/crypt"
	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/log"
)

// md5Crypters maps the id of a salted MD5 hash, delimiters included,
// to its crypt implementation.
var md5Crypters = map[string]func() crypt.Crypter{
	"$1$":    md5_crypt.New,
	"$apr1$": apr1_crypt.New,
}

// saltedHash is a parsed "$id$salt$digest" secret. The id keeps both
// of its delimiters.
type saltedHash struct {
	id, salt, digest string
}

func parseSaltedHash(secret string) (saltedHash, error) {
	if secret == "" {
		return saltedHash{}, errors.E(errors.MalformedRecord, "empty MD5 secret")
	}
	i := strings.IndexByte(secret[1:], '$')
	if i < 0 {
		return saltedHash{}, errors.E(errors.MalformedRecord, "password not in MD5 format: missing id delimiter")
	}
	id := secret[:i+2]
	rest := secret[len(id):]
	j := strings.IndexByte(rest, '$')
	if j < 0 {
		return saltedHash{}, errors.E(errors.MalformedRecord, "password not in MD5 format: missing salt delimiter")
	}
	return saltedHash{id: id, salt: rest[:j], digest: rest[j+1:]}, nil
}

// checkSaltedMD5 recomputes the MD5 crypt hash of supplied with the
// stored id and salt and compares it with the stored secret.
func checkSaltedMD5(stored, supplied string) (bool, error) {
	h, err := parseSaltedHash(stored)
	if err != nil {
		log.Error.Printf("auth: %v", err)
		return false, err
	}
	newCrypter, ok := md5Crypters[h.id]
	if !ok {
		return false, errors.E(errors.UnsupportedScheme, fmt.Sprintf("salted hash id %q", h.id))
	}
	computed, err := newCrypter().Generate([]byte(supplied), []byte(h.id+h.salt+"$"))
	if err != nil {
		return false, errors.E(errors.MalformedRecord, fmt.Sprintf("cannot generate MD5 digest with salt %q", h.salt), err)
	}
	return equal(computed, stored), nil
}

// checkSaltedDES recomputes the DES crypt(3) hash of supplied with the
// stored two-character salt and compares it with the stored secret.
func checkSaltedDES(stored, supplied string) (bool, error) {
	if len(stored) < 2 {
		err := errors.E(errors.MalformedRecord, "crypt secret shorter than its two-character salt")
		log.Error.Printf("auth: %v", err)
		return false, err
	}
	computed, err := descrypt.Crypt(supplied, stored[:2])
	if err != nil {
		return false, errors.E(errors.MalformedRecord, fmt.Sprintf("crypt with salt %q", stored[:2]), err)
	}
	return equal(computed, stored), nil
}
